package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/pkg/logger"
)

func TestHTTPScorerScoresTexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"great quarter", "awful guidance"}, req.Texts)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.8, -0.6}})
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, logger.Nop())
	scores, err := s.ScoreTexts(context.Background(), []string{"great quarter", "awful guidance"})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.8, -0.6}, scores)
}

func TestHTTPScorerEmptyInput(t *testing.T) {
	// No server at all: empty input must not hit the network.
	s := NewHTTPScorer("http://127.0.0.1:0", logger.Nop())

	scores, err := s.ScoreTexts(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestHTTPScorerClampsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{2.5, -3.0}})
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, logger.Nop())
	scores, err := s.ScoreTexts(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1}, scores)
}

func TestHTTPScorerLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.1}})
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, logger.Nop())
	_, err := s.ScoreTexts(context.Background(), []string{"a", "b"})

	assert.Error(t, err)
}

func TestDailyMeanAggregatesPerTicker(t *testing.T) {
	day := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	docs := []ScoredDoc{
		{Ticker: "AAPL", At: day, Score: 0.4},
		{Ticker: "AAPL", At: day.Add(time.Hour), Score: 0.8},
		{Ticker: "MSFT", At: day, Score: -1.0},
		{Ticker: "TSLA", At: day.AddDate(0, 0, -1), Score: 0.9}, // yesterday, dropped
	}

	signals := DailyMean(docs, day)

	require.Len(t, signals, 2)
	// AAPL raw mean 0.6 -> (0.6+1)/2 = 0.8
	assert.InDelta(t, 0.8, signals["AAPL"].Norm, 1e-12)
	assert.Equal(t, 2, signals["AAPL"].Count)
	// MSFT raw mean -1.0 -> 0.0
	assert.Zero(t, signals["MSFT"].Norm)
	assert.Equal(t, 1, signals["MSFT"].Count)

	_, ok := signals["TSLA"]
	assert.False(t, ok)
}

func TestDailyMeanNormalizationRoundTrip(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  float64
		want float64
	}{
		{0.0, 0.5},
		{1.0, 1.0},
		{-1.0, 0.0},
	}

	for _, tt := range tests {
		signals := DailyMean([]ScoredDoc{{Ticker: "X", At: day, Score: tt.raw}}, day)
		assert.InDelta(t, tt.want, signals["X"].Norm, 1e-12)
	}
}

func TestDailyMeanEmpty(t *testing.T) {
	signals := DailyMean(nil, time.Now())
	assert.Empty(t, signals)
}
