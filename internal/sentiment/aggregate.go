package sentiment

import (
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
)

// ScoredDoc is one scored document (news article or social post)
// attributed to a ticker.
type ScoredDoc struct {
	Ticker string
	At     time.Time
	Score  float64 // continuous, [-1, 1]
}

// DailyMean aggregates scored documents into one normalized signal per
// ticker for the given UTC calendar date. Documents dated outside that
// day are dropped.
//
// Tickers with no documents are simply absent from the result; the
// ranker fills those with its 0.0 default.
func DailyMean(docs []ScoredDoc, date time.Time) map[string]contracts.SentimentSignal {
	day := date.UTC().Format(contracts.DateLayout)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, doc := range docs {
		if doc.At.UTC().Format(contracts.DateLayout) != day {
			continue
		}
		sums[doc.Ticker] += doc.Score
		counts[doc.Ticker]++
	}

	out := make(map[string]contracts.SentimentSignal, len(sums))
	for ticker, n := range counts {
		mean := sums[ticker] / float64(n)
		out[ticker] = contracts.SentimentSignal{
			Norm:  contracts.NormalizeSentiment(mean),
			Count: n,
		}
	}
	return out
}
