package screen

import (
	"sort"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Screener applies the price and liquidity hard cut.
type Screener struct {
	config Config
	logger *logger.Logger
}

// Config defines the hard cut thresholds.
type Config struct {
	MinPrice     float64 // last close must exceed this
	MinAvgVolume float64 // 20-day average volume must exceed this
	MinSurvivors int     // fallback floor: fewer survivors returns the full input
}

// NewScreener creates a new screener.
func NewScreener(config Config, log *logger.Logger) *Screener {
	return &Screener{config: config, logger: log}
}

// Screen filters the snapshot set by price and liquidity floors.
// Tickers without a snapshot for the run date are simply not present
// in the input and are never considered: absence is not failure.
//
// If fewer than MinSurvivors tickers pass, the screen is considered too
// strict for the day and the full input set is returned instead, so a
// thin market day does not starve the ranker.
//
// The result is sorted for deterministic downstream iteration.
func (s *Screener) Screen(snapshots map[string]contracts.PriceSnapshot) []string {
	passed := make([]string, 0, len(snapshots))
	for ticker, snap := range snapshots {
		if snap.Close > s.config.MinPrice && snap.AvgVolume20 > s.config.MinAvgVolume {
			passed = append(passed, ticker)
		}
	}

	fellBack := false
	if len(passed) < s.config.MinSurvivors {
		passed = passed[:0]
		for ticker := range snapshots {
			passed = append(passed, ticker)
		}
		fellBack = true
	}

	sort.Strings(passed)

	s.logger.WithFields(map[string]interface{}{
		"total_input": len(snapshots),
		"passed":      len(passed),
		"fallback":    fellBack,
		"min_price":   s.config.MinPrice,
		"min_avg_vol": s.config.MinAvgVolume,
	}).Info("Screening completed")

	return passed
}
