package social

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// RedditClient pulls recent posts from the public Reddit JSON listing
// endpoints. No OAuth: a descriptive User-Agent is enough for the
// unauthenticated read volume this pipeline needs.
type RedditClient struct {
	http       *resty.Client
	baseURL    string
	subreddits []string
	logger     *logger.Logger
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Subreddit  string  `json:"subreddit"`
				CreatedUTC float64 `json:"created_utc"`
				Stickied   bool    `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewRedditClient creates a Reddit client for the configured
// subreddits.
func NewRedditClient(cfg config.RedditConfig, log *logger.Logger) *RedditClient {
	http := resty.New()
	http.SetTimeout(30 * time.Second)
	http.SetHeader("User-Agent", cfg.UserAgent)
	http.SetRetryCount(2)

	return &RedditClient{
		http:       http,
		baseURL:    "https://www.reddit.com",
		subreddits: cfg.Subreddits,
		logger:     log,
	}
}

// RecentPosts fetches new posts across all configured subreddits,
// keeping those created within lookback. A failing subreddit is
// skipped with a warning so one outage never empties the whole
// channel.
func (c *RedditClient) RecentPosts(ctx context.Context, lookback time.Duration, limitPerSub int) ([]contracts.Post, error) {
	cutoff := time.Now().UTC().Add(-lookback)

	var posts []contracts.Post
	for _, sub := range c.subreddits {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fetched, err := c.fetchSubreddit(ctx, sub, limitPerSub)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"subreddit": sub,
				"error":     err.Error(),
			}).Warn("Subreddit fetch failed, skipping")
			continue
		}
		for _, p := range fetched {
			if p.CreatedAt.After(cutoff) {
				posts = append(posts, p)
			}
		}
	}
	return posts, nil
}

func (c *RedditClient) fetchSubreddit(ctx context.Context, subreddit string, limit int) ([]contracts.Post, error) {
	var result listingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&result).
		Get(fmt.Sprintf("%s/r/%s/new.json", c.baseURL, subreddit))
	if err != nil {
		return nil, fmt.Errorf("reddit fetch for r/%s failed: %w", subreddit, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reddit fetch for r/%s returned status %d", subreddit, resp.StatusCode())
	}

	posts := make([]contracts.Post, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		d := child.Data
		if d.Stickied || d.Title == "" {
			continue
		}
		posts = append(posts, contracts.Post{
			Subreddit: d.Subreddit,
			Title:     d.Title,
			Body:      d.Selftext,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}
