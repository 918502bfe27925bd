package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

func defaultWeights() config.FactorWeights {
	return config.FactorWeights{Momentum: 0.35, RelStrength: 0.15, News: 0.25, Reddit: 0.15, Squeeze: 0.10}
}

func TestRankOrdersByCombinedScore(t *testing.T) {
	r := NewRanker(defaultWeights(), logger.Nop())

	cands := []Candidate{
		{Ticker: "LOW", Return5D: -0.04},
		{Ticker: "MID", Return5D: 0.01, News: contracts.SentimentSignal{Norm: 0.5, Count: 2}},
		{Ticker: "TOP", Return5D: 0.09, News: contracts.SentimentSignal{Norm: 0.9, Count: 5}},
	}

	scored := r.Rank(cands)
	require.Len(t, scored, 3)

	assert.Equal(t, "TOP", scored[0].Ticker)
	assert.Equal(t, "LOW", scored[2].Ticker)
	assert.Greater(t, scored[0].Combined, scored[1].Combined)
	assert.Greater(t, scored[1].Combined, scored[2].Combined)
}

func TestRankSqueezeNeverNegative(t *testing.T) {
	r := NewRanker(defaultWeights(), logger.Nop())

	cands := []Candidate{
		{Ticker: "A", Return5D: 0.10, ShortInterest: 25}, // high momentum, high short interest
		{Ticker: "B", Return5D: -0.05, ShortInterest: 30}, // negative momentum
		{Ticker: "C", Return5D: 0.08, ShortInterest: 2},  // low short interest
		{Ticker: "D", Return5D: -0.02, ShortInterest: 1},
	}

	scored := r.Rank(cands)
	byTicker := make(map[string]contracts.FactorScore)
	for _, fs := range scored {
		assert.GreaterOrEqual(t, fs.Squeeze, 0.0)
		byTicker[fs.Ticker] = fs
	}

	// Squeeze fires only when both z-scores are positive.
	assert.Greater(t, byTicker["A"].Squeeze, 0.0)
	assert.Zero(t, byTicker["B"].Squeeze, "negative momentum zeroes the squeeze")
	assert.Zero(t, byTicker["D"].Squeeze)
}

func TestRankSqueezeZeroWhenEitherSideBelowMean(t *testing.T) {
	r := NewRanker(defaultWeights(), logger.Nop())

	// C has above-mean momentum but below-mean short interest.
	scored := r.Rank([]Candidate{
		{Ticker: "A", Return5D: 0.01, ShortInterest: 30},
		{Ticker: "B", Return5D: 0.02, ShortInterest: 20},
		{Ticker: "C", Return5D: 0.10, ShortInterest: 1},
	})

	for _, fs := range scored {
		if fs.Ticker == "C" {
			assert.Zero(t, fs.Squeeze)
		}
	}
}

func TestRankStableTieBreak(t *testing.T) {
	// Equal inputs everywhere: ties keep input order.
	r := NewRanker(defaultWeights(), logger.Nop())

	scored := r.Rank([]Candidate{
		{Ticker: "FIRST", Return5D: 0.02},
		{Ticker: "SECOND", Return5D: 0.02},
		{Ticker: "THIRD", Return5D: 0.02},
	})

	assert.Equal(t, "FIRST", scored[0].Ticker)
	assert.Equal(t, "SECOND", scored[1].Ticker)
	assert.Equal(t, "THIRD", scored[2].Ticker)
}

func TestRankRelativeStrength(t *testing.T) {
	// Same absolute momentum, but A beat its benchmark while B lagged.
	weights := config.FactorWeights{RelStrength: 1.0}
	r := NewRanker(weights, logger.Nop())

	scored := r.Rank([]Candidate{
		{Ticker: "B", Return5D: 0.03, BenchReturn5D: 0.05},
		{Ticker: "A", Return5D: 0.03, BenchReturn5D: -0.01},
	})

	assert.Equal(t, "A", scored[0].Ticker)
	assert.Equal(t, "B", scored[1].Ticker)
}

func TestRankEmptyInput(t *testing.T) {
	r := NewRanker(defaultWeights(), logger.Nop())
	assert.Nil(t, r.Rank(nil))
}

func TestTopN(t *testing.T) {
	scored := []contracts.FactorScore{
		{Ticker: "A", Combined: 3},
		{Ticker: "B", Combined: 2},
		{Ticker: "C", Combined: 1},
	}

	top := TopN(scored, 2)
	assert.True(t, top["A"])
	assert.True(t, top["B"])
	assert.False(t, top["C"])

	// n larger than the slice is fine
	assert.Len(t, TopN(scored, 10), 3)
}

func TestSectorETF(t *testing.T) {
	assert.Equal(t, "XLK", SectorETF("AAPL"))
	assert.Equal(t, "XLE", SectorETF("XOM"))
	assert.Equal(t, FallbackBenchmark, SectorETF("UNMAPPED"))
}

func TestBenchmarkETFs(t *testing.T) {
	etfs := BenchmarkETFs([]string{"AAPL", "MSFT", "XOM", "ZZZZ"})

	assert.Contains(t, etfs, "SPY")
	assert.Contains(t, etfs, "XLK")
	assert.Contains(t, etfs, "XLE")
	// Deduplicated: AAPL and MSFT share XLK.
	assert.Len(t, etfs, 3)
}
