package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
	"github.com/kmorrow/papertrade/pkg/redis"
)

const cacheTTL = 1 * time.Hour

// YahooProvider fetches daily candles from Yahoo Finance. An optional
// Redis cache sits in front of the network; with Redis disabled every
// cache call is a no-op and the provider always goes to the wire.
type YahooProvider struct {
	cache  *redis.Cache
	logger *logger.Logger
}

// NewYahooProvider creates a Yahoo-backed price provider.
func NewYahooProvider(cache *redis.Cache, log *logger.Logger) *YahooProvider {
	return &YahooProvider{cache: cache, logger: log}
}

// History fetches lookbackDays of daily candles for each ticker. A
// ticker whose fetch fails is omitted from the result with a warning;
// the error return is reserved for the degenerate all-failed case.
func (p *YahooProvider) History(ctx context.Context, tickers []string, lookbackDays int) (contracts.PriceHistory, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	history := make(contracts.PriceHistory, len(tickers))
	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		candles, err := p.fetchOne(ctx, ticker, start, end)
		if err != nil {
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Price fetch failed, skipping ticker")
			continue
		}
		if len(candles) > 0 {
			history[ticker] = candles
		}
	}

	if len(history) == 0 && len(tickers) > 0 {
		return nil, fmt.Errorf("no price data for any of %d tickers", len(tickers))
	}
	return history, nil
}

func (p *YahooProvider) fetchOne(ctx context.Context, ticker string, start, end time.Time) ([]contracts.Candle, error) {
	key := fmt.Sprintf("candles:%s:%s:%s",
		ticker, start.Format(contracts.DateLayout), end.Format(contracts.DateLayout))

	var cached []contracts.Candle
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var candles []contracts.Candle
	for iter.Next() {
		bar := iter.Bar()
		close, _ := bar.AdjClose.Float64()
		candles = append(candles, contracts.Candle{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Close:  close,
			Volume: float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chart fetch for %s failed: %w", ticker, err)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })

	if err := p.cache.Set(ctx, key, candles, cacheTTL); err != nil {
		p.logger.WithError(err).Warn("Failed to cache candles")
	}
	return candles, nil
}
