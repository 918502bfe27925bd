package exit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

var testConfig = Config{
	StopLossPct:      0.08,
	TakeProfitPct:    0.05,
	SentimentExitMin: 0.20,
	HoldDaysMax:      3,
}

func today() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func position(entry float64, daysAgo int) contracts.Position {
	return contracts.Position{
		Ticker:     "TEST",
		Qty:        10,
		EntryPrice: entry,
		EntryDate:  today().AddDate(0, 0, -daysAgo),
	}
}

// healthy returns an observation that fires no trigger.
func healthy(price float64) Observation {
	return Observation{
		Price: price, HasPrice: true,
		Ret5: 0.02, HasRet5: true,
		NewsSent: 0.7, RedditSent: 0.7,
	}
}

func TestStopLossTriggers(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	// Entered at 100, now 91: -9% breaches the -8% stop regardless of
	// everything else looking fine.
	obs := healthy(91)
	d := e.Evaluate(position(100, 1), obs, today())

	assert.True(t, d.Close)
	assert.Contains(t, d.Reasons, "stop -8%")
	assert.InDelta(t, -0.09, d.PnLPct, 1e-12)
}

func TestTakeProfitTriggers(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	d := e.Evaluate(position(100, 1), healthy(106), today())

	assert.True(t, d.Close)
	assert.Contains(t, d.Reasons, "take +5%")
}

func TestMomentumReversalTriggers(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	obs := healthy(101)
	obs.Ret5 = -0.01
	d := e.Evaluate(position(100, 1), obs, today())

	assert.True(t, d.Close)
	assert.Equal(t, []string{"momentum<=0"}, d.Reasons)
}

func TestMissingRet5CountsAsReversal(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	obs := healthy(101)
	obs.HasRet5 = false
	obs.Ret5 = 0.5 // ignored when HasRet5 is false
	d := e.Evaluate(position(100, 1), obs, today())

	assert.True(t, d.Close)
	assert.Contains(t, d.Reasons, "momentum<=0")
}

func TestSentimentFloorTriggers(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	obs := healthy(101)
	obs.NewsSent = 0.1
	obs.RedditSent = 0.2 // blended 0.6*0.1 + 0.4*0.2 = 0.14 < 0.20
	d := e.Evaluate(position(100, 1), obs, today())

	assert.True(t, d.Close)
	assert.Equal(t, []string{"sent<0.20"}, d.Reasons)
	assert.InDelta(t, 0.14, d.BlendSent, 1e-12)
}

func TestTimeExitTriggers(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	d := e.Evaluate(position(100, 3), healthy(101), today())

	assert.True(t, d.Close)
	assert.Equal(t, []string{"time>3d"}, d.Reasons)
}

func TestAllTriggersCollected(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	// Crashed, reversed, sentiment dead, and held too long: all four
	// reasons reported jointly.
	obs := Observation{
		Price: 85, HasPrice: true,
		Ret5: -0.1, HasRet5: true,
		NewsSent: 0, RedditSent: 0,
	}
	d := e.Evaluate(position(100, 5), obs, today())

	assert.True(t, d.Close)
	assert.ElementsMatch(t,
		[]string{"stop -8%", "momentum<=0", "sent<0.20", "time>3d"},
		d.Reasons)
}

func TestHealthyPositionHolds(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	d := e.Evaluate(position(100, 1), healthy(102), today())

	assert.False(t, d.Close)
	assert.False(t, d.Skipped)
	assert.Empty(t, d.Reasons)
}

func TestNoPriceSkips(t *testing.T) {
	e := NewEngine(testConfig, logger.Nop())

	d := e.Evaluate(position(100, 10), Observation{HasPrice: false}, today())

	assert.True(t, d.Skipped)
	assert.False(t, d.Close, "stale data means hold, never force-close")
}
