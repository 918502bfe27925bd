package contracts

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date format used in every persisted row.
const DateLayout = "2006-01-02"

// NormalizeTicker trims and uppercases a raw symbol string.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Candle is one trading day of adjusted close and volume for a ticker.
type Candle struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceHistory maps ticker to its candles sorted ascending by date.
// Missing ticker/date cells are simply absent, never zero-filled.
type PriceHistory map[string][]Candle

// LastDate returns the most recent date present across all series.
// ok is false when the history holds no candles at all.
func (h PriceHistory) LastDate() (time.Time, bool) {
	var last time.Time
	found := false
	for _, candles := range h {
		if len(candles) == 0 {
			continue
		}
		if d := candles[len(candles)-1].Date; !found || d.After(last) {
			last = d
			found = true
		}
	}
	return last, found
}

// PriceSnapshot is the per-ticker state for the run date.
// HasReturn5D is false when there is not enough history for a 5-day
// return; the absence is explicit rather than a NaN.
type PriceSnapshot struct {
	Ticker      string
	Close       float64
	AvgVolume20 float64
	Return5D    float64
	HasReturn5D bool
}

// SentimentSignal is the normalized daily sentiment for one ticker.
// Norm is in [0,1] with 0.5 meaning neutral. A ticker with no scored
// documents gets the zero value {0, 0}: the ranker deliberately fills
// absent tickers with 0.0, not 0.5, to match historical signal output.
type SentimentSignal struct {
	Norm  float64 `json:"norm"`
	Count int     `json:"count"`
}

// NormalizeSentiment maps a raw mean score in [-1,1] onto [0,1].
func NormalizeSentiment(rawMean float64) float64 {
	return Clamp((rawMean+1)/2, 0, 1)
}

// Clamp limits v to the [lo, hi] range.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FactorScore carries the standardized sub-scores and the final
// weighted combined score for one ticker in one run.
type FactorScore struct {
	Ticker       string  `json:"ticker"`
	MomentumZ    float64 `json:"momentum_z"`
	RelStrengthZ float64 `json:"relstrength_z"`
	NewsSent     float64 `json:"news_sent"`
	RedditSent   float64 `json:"reddit_sent"`
	Squeeze      float64 `json:"squeeze"`
	Combined     float64 `json:"combined"`
}

// Position is an open paper trade. At most one per ticker.
type Position struct {
	Ticker     string    `json:"ticker"`
	Qty        int       `json:"qty"`
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
}

// DaysHeld returns whole calendar days between entry and today.
func (p Position) DaysHeld(today time.Time) int {
	entry := time.Date(p.EntryDate.Year(), p.EntryDate.Month(), p.EntryDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(now.Sub(entry).Hours() / 24)
}

// ClosedTrade is one append-only log entry for a closed position.
type ClosedTrade struct {
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitDate   time.Time `json:"exit_date"`
	ExitPrice  float64   `json:"exit_price"`
	Qty        int       `json:"qty"`
	PnL        float64   `json:"pnl"`
	Reasons    []string  `json:"reasons"`
}
