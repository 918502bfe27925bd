package rank

import (
	"sort"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Ranker combines the standardized factors into one weighted score per
// ticker. Weights come validated from config: they sum to 1.0.
type Ranker struct {
	weights config.FactorWeights
	logger  *logger.Logger
}

// Candidate is one ticker's raw factor inputs for a run.
type Candidate struct {
	Ticker        string
	Return5D      float64
	BenchReturn5D float64 // sector ETF 5-day return, 0 when unavailable
	ShortInterest float64 // percent of float, 0 when unknown
	News          contracts.SentimentSignal
	Reddit        contracts.SentimentSignal
}

// NewRanker creates a new ranker.
func NewRanker(weights config.FactorWeights, log *logger.Logger) *Ranker {
	return &Ranker{weights: weights, logger: log}
}

// Rank scores every candidate and returns them sorted by combined score
// descending. The sort is stable, so ties keep the input order; callers
// pass a deterministically ordered candidate slice to keep runs
// reproducible.
func (r *Ranker) Rank(candidates []Candidate) []contracts.FactorScore {
	if len(candidates) == 0 {
		return nil
	}

	ret5 := make([]float64, len(candidates))
	relStr := make([]float64, len(candidates))
	shortInt := make([]float64, len(candidates))
	for i, c := range candidates {
		ret5[i] = c.Return5D
		relStr[i] = c.Return5D - c.BenchReturn5D
		shortInt[i] = c.ShortInterest
	}

	momZ := ZScores(ret5)
	rsZ := ZScores(relStr)
	siZ := ZScores(shortInt)

	scored := make([]contracts.FactorScore, len(candidates))
	for i, c := range candidates {
		// Squeeze rewards the co-occurrence of above-mean short
		// interest and above-mean momentum; either side at or below
		// its mean zeroes the factor rather than going negative.
		squeeze := max0(siZ[i]) * max0(momZ[i])

		fs := contracts.FactorScore{
			Ticker:       c.Ticker,
			MomentumZ:    momZ[i],
			RelStrengthZ: rsZ[i],
			NewsSent:     c.News.Norm,
			RedditSent:   c.Reddit.Norm,
			Squeeze:      squeeze,
		}
		fs.Combined = r.weights.Momentum*fs.MomentumZ +
			r.weights.RelStrength*fs.RelStrengthZ +
			r.weights.News*fs.NewsSent +
			r.weights.Reddit*fs.RedditSent +
			r.weights.Squeeze*fs.Squeeze
		scored[i] = fs
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Combined > scored[j].Combined
	})

	r.logger.WithFields(map[string]interface{}{
		"candidates": len(scored),
		"top_ticker": scored[0].Ticker,
		"top_score":  scored[0].Combined,
	}).Info("Ranking completed")

	return scored
}

// TopN returns the ticker set of the n highest-scored candidates.
func TopN(scored []contracts.FactorScore, n int) map[string]bool {
	if n > len(scored) {
		n = len(scored)
	}
	out := make(map[string]bool, n)
	for _, fs := range scored[:n] {
		out[fs.Ticker] = true
	}
	return out
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
