package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// HTTPScorer scores texts through an external sentiment service. The
// service takes a batch of texts and returns one continuous score in
// [-1, 1] per text, same order.
type HTTPScorer struct {
	client *resty.Client
	logger *logger.Logger
}

type scoreRequest struct {
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// NewHTTPScorer creates a scorer against the given base URL.
func NewHTTPScorer(baseURL string, log *logger.Logger) *HTTPScorer {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(2)

	return &HTTPScorer{client: client, logger: log}
}

// ScoreTexts returns one score per input text, in input order. Empty
// input returns an empty result without a network call. Out-of-range
// scores from the service are clamped to [-1, 1].
func (s *HTTPScorer) ScoreTexts(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}

	var result scoreResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(scoreRequest{Texts: texts}).
		SetResult(&result).
		Post("/score")
	if err != nil {
		return nil, fmt.Errorf("sentiment request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sentiment service returned status %d", resp.StatusCode())
	}
	if len(result.Scores) != len(texts) {
		return nil, fmt.Errorf("sentiment service returned %d scores for %d texts",
			len(result.Scores), len(texts))
	}

	scores := make([]float64, len(result.Scores))
	for i, sc := range result.Scores {
		scores[i] = contracts.Clamp(sc, -1, 1)
	}
	return scores, nil
}
