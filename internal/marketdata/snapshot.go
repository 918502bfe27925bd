package marketdata

import (
	"fmt"

	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
)

const avgVolumeWindow = 20

// BuildSnapshots reduces each ticker's candle series to the run-date
// snapshot the screener and ranker consume. The run date is the most
// recent date present anywhere in the history; tickers without a
// candle on that date are dropped (stale series, not tradeable today).
//
// Missing derived values stay explicit: fewer than 20 days of volume
// yields AvgVolume20 == 0 (fails the screen), fewer than 6 closes
// yields HasReturn5D == false.
func BuildSnapshots(history contracts.PriceHistory) (map[string]contracts.PriceSnapshot, time.Time, error) {
	runDate, ok := history.LastDate()
	if !ok {
		return nil, time.Time{}, fmt.Errorf("no price data")
	}

	snapshots := make(map[string]contracts.PriceSnapshot, len(history))
	for ticker, candles := range history {
		n := len(candles)
		if n == 0 || !sameDay(candles[n-1].Date, runDate) {
			continue
		}

		snap := contracts.PriceSnapshot{
			Ticker: ticker,
			Close:  candles[n-1].Close,
		}

		if n >= avgVolumeWindow {
			var sum float64
			for _, c := range candles[n-avgVolumeWindow:] {
				sum += c.Volume
			}
			snap.AvgVolume20 = sum / avgVolumeWindow
		}

		// 5-day return needs the close 5 trading days back.
		if n >= 6 {
			base := candles[n-6].Close
			if base > 0 {
				snap.Return5D = candles[n-1].Close/base - 1
				snap.HasReturn5D = true
			}
		}

		snapshots[ticker] = snap
	}

	if len(snapshots) == 0 {
		return nil, time.Time{}, fmt.Errorf("no price data on run date %s", runDate.Format(contracts.DateLayout))
	}
	return snapshots, runDate, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
