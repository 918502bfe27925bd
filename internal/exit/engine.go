package exit

import (
	"fmt"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Engine evaluates open positions against the exit rules. A position is
// a single-state machine: OPEN until any trigger fires, then CLOSED
// (terminal) within the same run.
type Engine struct {
	config Config
	logger *logger.Logger
}

// Config defines the exit trigger thresholds.
type Config struct {
	StopLossPct      float64 // e.g. 0.08 closes at -8%
	TakeProfitPct    float64 // e.g. 0.05 closes at +5%
	SentimentExitMin float64 // blended sentiment floor
	HoldDaysMax      int     // time-based exit
}

// Observation carries the market state for one position's ticker on the
// run date. Missing values are explicit flags resolved at the ingestion
// boundary, never NaNs.
type Observation struct {
	Price      float64
	HasPrice   bool
	Ret5       float64
	HasRet5    bool
	NewsSent   float64 // [0,1] normalized, 0 when no documents
	RedditSent float64 // [0,1] normalized, 0 when no documents
}

// Decision is the outcome of evaluating one position.
type Decision struct {
	Close     bool
	Skipped   bool // no price observation: stale data means hold, never force-close
	Reasons   []string
	Price     float64
	PnLPct    float64
	BlendSent float64
}

// NewEngine creates a new exit engine.
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{config: config, logger: log}
}

// Evaluate checks every trigger for one open position. All firing
// triggers are collected and reported jointly, not just the first.
//
// A ticker with no price observation this run is skipped: the position
// holds and is re-evaluated next run.
func (e *Engine) Evaluate(pos contracts.Position, obs Observation, today time.Time) Decision {
	if !obs.HasPrice {
		e.logger.WithFields(map[string]interface{}{
			"ticker": pos.Ticker,
		}).Warn("No price observation for open position, holding")
		return Decision{Skipped: true}
	}

	pnl := (obs.Price - pos.EntryPrice) / pos.EntryPrice
	daysHeld := pos.DaysHeld(today)

	// Missing 5-day return is coerced to 0, which fires the momentum
	// reversal trigger. This matches historical signal output.
	ret5 := 0.0
	if obs.HasRet5 {
		ret5 = obs.Ret5
	}

	blended := 0.6*obs.NewsSent + 0.4*obs.RedditSent

	var reasons []string
	if pnl <= -e.config.StopLossPct {
		reasons = append(reasons, fmt.Sprintf("stop -%.0f%%", e.config.StopLossPct*100))
	}
	if pnl >= e.config.TakeProfitPct {
		reasons = append(reasons, fmt.Sprintf("take +%.0f%%", e.config.TakeProfitPct*100))
	}
	if ret5 <= 0 {
		reasons = append(reasons, "momentum<=0")
	}
	if blended < e.config.SentimentExitMin {
		reasons = append(reasons, fmt.Sprintf("sent<%.2f", e.config.SentimentExitMin))
	}
	if daysHeld >= e.config.HoldDaysMax {
		reasons = append(reasons, fmt.Sprintf("time>%dd", e.config.HoldDaysMax))
	}

	d := Decision{
		Close:     len(reasons) > 0,
		Reasons:   reasons,
		Price:     obs.Price,
		PnLPct:    pnl,
		BlendSent: blended,
	}

	if d.Close {
		e.logger.WithFields(map[string]interface{}{
			"ticker":    pos.Ticker,
			"pnl":       pnl,
			"days_held": daysHeld,
			"reasons":   reasons,
		}).Info("Exit triggered")
	}

	return d
}
