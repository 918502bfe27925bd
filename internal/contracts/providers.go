package contracts

import (
	"context"
	"time"
)

// Article is one news record returned by the news provider.
type Article struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// Post is one social-media record returned by the social provider.
type Post struct {
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// PriceProvider returns a close/volume time series per ticker.
// Dates are sorted ascending; missing cells are absent, not zero.
type PriceProvider interface {
	History(ctx context.Context, tickers []string, lookbackDays int) (PriceHistory, error)
}

// NewsProvider returns recent articles for a ticker. Fetch failure is
// treated by callers as zero-document input, never as fatal.
type NewsProvider interface {
	CompanyNews(ctx context.Context, ticker string, from, to time.Time, pageSize int) ([]Article, error)
}

// SocialProvider returns recent posts from the configured communities.
type SocialProvider interface {
	RecentPosts(ctx context.Context, lookback time.Duration, limitPerSub int) ([]Post, error)
}

// SentimentScorer returns one polarity score in [-1,1] per input text,
// same length and order as the input. Empty input yields empty output.
type SentimentScorer interface {
	ScoreTexts(ctx context.Context, texts []string) ([]float64, error)
}

// ShortInterestProvider returns short interest as percent of float per
// ticker. Tickers it knows nothing about are absent from the map.
type ShortInterestProvider interface {
	ShortInterest(ctx context.Context, tickers []string) (map[string]float64, error)
}
