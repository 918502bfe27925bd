package social

import (
	"regexp"
	"strings"

	"github.com/kmorrow/papertrade/internal/contracts"
)

// TickerTerms binds a ticker to the keywords that identify it in post
// text. Order across the slice matters: the first ticker whose pattern
// matches wins.
type TickerTerms struct {
	Ticker string
	Terms  []string
}

// DefaultTerms builds a term list where each ticker is identified by
// its own symbol.
func DefaultTerms(tickers []string) []TickerTerms {
	out := make([]TickerTerms, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, TickerTerms{Ticker: t, Terms: []string{t}})
	}
	return out
}

type tickerPattern struct {
	ticker string
	re     *regexp.Regexp
}

// Tagger attributes posts to tickers by whole-word, case-insensitive
// keyword match over title and body.
type Tagger struct {
	patterns []tickerPattern
}

// NewTagger compiles one pattern per ticker. Tickers with no usable
// terms are skipped.
func NewTagger(terms []TickerTerms) *Tagger {
	tagger := &Tagger{}
	for _, tt := range terms {
		escaped := make([]string, 0, len(tt.Terms))
		for _, term := range tt.Terms {
			if term != "" {
				escaped = append(escaped, regexp.QuoteMeta(term))
			}
		}
		if len(escaped) == 0 {
			continue
		}
		re := regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
		tagger.patterns = append(tagger.patterns, tickerPattern{ticker: tt.Ticker, re: re})
	}
	return tagger
}

// Tag returns the first ticker mentioned in the post, searching title
// and body together. ok is false when no ticker matches.
func (t *Tagger) Tag(post contracts.Post) (string, bool) {
	text := post.Title + " " + post.Body
	for _, p := range t.patterns {
		if p.re.MatchString(text) {
			return p.ticker, true
		}
	}
	return "", false
}
