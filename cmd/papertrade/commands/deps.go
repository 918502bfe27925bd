package commands

import (
	"context"
	"fmt"

	"github.com/kmorrow/papertrade/internal/ledger"
	"github.com/kmorrow/papertrade/internal/marketdata"
	"github.com/kmorrow/papertrade/internal/news"
	"github.com/kmorrow/papertrade/internal/pipeline"
	"github.com/kmorrow/papertrade/internal/sentiment"
	"github.com/kmorrow/papertrade/internal/shortint"
	"github.com/kmorrow/papertrade/internal/social"
	"github.com/kmorrow/papertrade/internal/universe"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/database"
	"github.com/kmorrow/papertrade/pkg/httputil"
	"github.com/kmorrow/papertrade/pkg/logger"
	"github.com/kmorrow/papertrade/pkg/redis"
)

// newStore builds the configured ledger store. The returned cleanup
// releases any backing connection.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ledger.Store, func(), error) {
	switch cfg.LedgerDriver {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		store, err := ledger.NewPostgresStore(ctx, db.Pool, log)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	default:
		store, err := ledger.NewCSVStore(cfg.DataDir, log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// newPipeline wires all providers and the ledger store into a runnable
// pipeline. Channels without configuration (sentiment service, short
// interest page) stay nil and degrade to their zero defaults.
func newPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Pipeline, ledger.Store, func(), error) {
	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		closeStore()
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "papertrade")

	deps := pipeline.Deps{
		Universe: universe.NewLoader(cfg.UniverseCSV, log),
		Prices:   marketdata.NewYahooProvider(cache, log),
		News:     news.NewClient(cfg.NewsAPI, log),
		Social:   social.NewRedditClient(cfg.Reddit, log),
		Store:    store,
	}
	if cfg.Sentiment.BaseURL != "" {
		deps.Scorer = sentiment.NewHTTPScorer(cfg.Sentiment.BaseURL, log)
	}
	if cfg.ShortInterest.PageURL != "" {
		scrapeClient := httputil.New(log).
			WithRateLimit(1, 1).
			WithUserAgent(cfg.Reddit.UserAgent)
		deps.ShortInt = shortint.NewScraper(cfg.ShortInterest.PageURL, scrapeClient, log)
	}

	cleanup := func() {
		_ = redisClient.Close()
		closeStore()
	}
	return pipeline.New(cfg, deps, log), store, cleanup, nil
}
