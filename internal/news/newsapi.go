package news

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Client fetches recent company headlines from NewsAPI. Without an API
// key every query returns no articles, which downstream treats as
// zero-document sentiment.
type Client struct {
	http   *resty.Client
	apiKey string
	logger *logger.Logger
}

type everythingResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string    `json:"title"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// NewClient creates a NewsAPI client.
func NewClient(cfg config.NewsAPIConfig, log *logger.Logger) *Client {
	http := resty.New()
	http.SetBaseURL(cfg.BaseURL)
	http.SetTimeout(30 * time.Second)
	http.SetRetryCount(2)

	return &Client{http: http, apiKey: cfg.APIKey, logger: log}
}

// CompanyNews returns headlines mentioning ticker published in
// [from, to], newest first, at most pageSize articles.
func (c *Client) CompanyNews(ctx context.Context, ticker string, from, to time.Time, pageSize int) ([]contracts.Article, error) {
	if c.apiKey == "" {
		c.logger.Debug("NewsAPI key not configured, returning no articles")
		return nil, nil
	}

	var result everythingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParams(map[string]string{
			"q":        ticker,
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": fmt.Sprintf("%d", pageSize),
			"from":     from.UTC().Format(time.RFC3339),
			"to":       to.UTC().Format(time.RFC3339),
		}).
		SetResult(&result).
		Get("/everything")
	if err != nil {
		return nil, fmt.Errorf("news request for %s failed: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("news request for %s returned status %d", ticker, resp.StatusCode())
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("news request for %s returned status %q", ticker, result.Status)
	}

	articles := make([]contracts.Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, contracts.Article{
			Title:       a.Title,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
