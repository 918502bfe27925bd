package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/internal/exit"
	"github.com/kmorrow/papertrade/internal/ledger"
	"github.com/kmorrow/papertrade/internal/marketdata"
	"github.com/kmorrow/papertrade/internal/rank"
	"github.com/kmorrow/papertrade/internal/screen"
	"github.com/kmorrow/papertrade/internal/sentiment"
	"github.com/kmorrow/papertrade/internal/sizing"
	"github.com/kmorrow/papertrade/internal/social"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Deps are the external collaborators of one pipeline instance. Nil
// News, Social, Scorer or ShortInterest disable that channel: the run
// proceeds with the documented zero defaults.
type Deps struct {
	Universe UniverseLoader
	Prices   contracts.PriceProvider
	News     contracts.NewsProvider
	Social   contracts.SocialProvider
	Scorer   contracts.SentimentScorer
	ShortInt contracts.ShortInterestProvider
	Store    ledger.Store
}

// UniverseLoader supplies the ticker universe for a run.
type UniverseLoader interface {
	Load() ([]string, error)
}

// Result is the full outcome of one generation run.
type Result struct {
	Date   time.Time
	Rows   []contracts.SignalRow
	Closed []contracts.ClosedTrade
	Book   ledger.Book
	Buys   []string
	Sells  []string
}

// Pipeline runs the daily signal generation end to end: screen, rank,
// evaluate exits, size entries, update the ledger, emit the table.
type Pipeline struct {
	strategy  config.StrategyConfig
	newsCfg   config.NewsAPIConfig
	redditCfg config.RedditConfig

	deps Deps

	screener *screen.Screener
	ranker   *rank.Ranker
	exits    *exit.Engine
	sizer    *sizing.Sizer
	logger   *logger.Logger
}

// New wires a pipeline from validated configuration and providers.
func New(cfg *config.Config, deps Deps, log *logger.Logger) *Pipeline {
	s := cfg.Strategy
	return &Pipeline{
		strategy:  s,
		newsCfg:   cfg.NewsAPI,
		redditCfg: cfg.Reddit,
		deps:      deps,
		screener: screen.NewScreener(screen.Config{
			MinPrice:     s.MinPrice,
			MinAvgVolume: s.MinAvgVolume,
			MinSurvivors: s.MinSurvivors,
		}, log),
		ranker: rank.NewRanker(s.Weights, log),
		exits: exit.NewEngine(exit.Config{
			StopLossPct:      s.StopLossPct,
			TakeProfitPct:    s.TakeProfitPct,
			SentimentExitMin: s.SentimentExitMin,
			HoldDaysMax:      s.HoldDaysMax,
		}, log),
		sizer:  sizing.NewSizer(s.Equity, s.RiskPerTradePct),
		logger: log,
	}
}

// Run executes one full generation pass. The returned rows list SELL
// decisions first, then BUY/HOLD rows in screened (lexicographic)
// order. Given identical inputs the output is identical.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	tickers, err := p.deps.Universe.Load()
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	// Benchmark ETF series ride along in the same fetch so relative
	// strength has its denominators.
	fetchList := withBenchmarks(tickers)
	history, err := p.deps.Prices.History(ctx, fetchList, p.strategy.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	allSnaps, runDate, err := marketdata.BuildSnapshots(history)
	if err != nil {
		return nil, fmt.Errorf("build snapshots: %w", err)
	}

	universeSet := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		universeSet[t] = true
	}
	snaps := make(map[string]contracts.PriceSnapshot, len(allSnaps))
	for t, snap := range allSnaps {
		if universeSet[t] {
			snaps[t] = snap
		}
	}

	screened := p.screener.Screen(snaps)

	// Candidates are the screened tickers that actually have a 5-day
	// return, ordered by that return descending. The order doubles as
	// the stable tie-break for the ranking sort.
	candidates := candidateTickers(screened, snaps)
	newsTickers := candidates
	if len(newsTickers) > p.strategy.TopKForNews {
		newsTickers = newsTickers[:p.strategy.TopKForNews]
	}

	newsSignals, newsCounts := p.fetchNewsSentiment(ctx, newsTickers, runDate)
	redditSignals, redditCounts := p.fetchRedditSentiment(ctx, screened, runDate)
	shortInterest := p.fetchShortInterest(ctx, candidates)

	scored := p.rankCandidates(candidates, snaps, allSnaps, newsSignals, redditSignals, shortInterest)
	buySet := rank.TopN(scored, p.strategy.TopNBuys)
	scoreByTicker := make(map[string]contracts.FactorScore, len(scored))
	for _, fs := range scored {
		scoreByTicker[fs.Ticker] = fs
	}

	book, err := p.deps.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	sellRows, closed, book := p.evaluateExits(book, snaps, newsSignals, redditSignals, runDate)

	baseRows, book := p.buildEntryRows(screened, snaps, book, buySet, scoreByTicker,
		newsSignals, redditSignals, newsCounts, redditCounts, runDate)

	if err := p.deps.Store.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}
	if err := p.deps.Store.AppendClosed(ctx, closed); err != nil {
		return nil, fmt.Errorf("append closed trades: %w", err)
	}

	result := &Result{
		Date:   runDate,
		Rows:   append(sellRows, baseRows...),
		Closed: closed,
		Book:   book,
	}
	for _, row := range sellRows {
		result.Sells = append(result.Sells, row.Ticker)
	}
	for _, row := range baseRows {
		if row.Action == contracts.ActionBuy {
			result.Buys = append(result.Buys, row.Ticker)
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"date":      runDate.Format(contracts.DateLayout),
		"screened":  len(screened),
		"sells":     len(result.Sells),
		"buys":      len(result.Buys),
		"positions": len(book),
	}).Info("Signal run completed")

	return result, nil
}

// withBenchmarks appends the sector ETFs (and SPY) to the fetch list,
// deduplicated against the universe itself.
func withBenchmarks(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers)+12)
	for _, t := range tickers {
		seen[t] = true
		out = append(out, t)
	}
	for _, etf := range rank.BenchmarkETFs(tickers) {
		if !seen[etf] {
			seen[etf] = true
			out = append(out, etf)
		}
	}
	return out
}

// candidateTickers orders the screened tickers with a 5-day return by
// that return, best first.
func candidateTickers(screened []string, snaps map[string]contracts.PriceSnapshot) []string {
	out := make([]string, 0, len(screened))
	for _, t := range screened {
		if snaps[t].HasReturn5D {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return snaps[out[i]].Return5D > snaps[out[j]].Return5D
	})
	return out
}

// fetchNewsSentiment pulls headlines per candidate and reduces them to
// one normalized signal per ticker. A failing fetch isolates to that
// ticker: it proceeds with zero documents.
func (p *Pipeline) fetchNewsSentiment(ctx context.Context, tickers []string, runDate time.Time) (map[string]contracts.SentimentSignal, map[string]int) {
	counts := make(map[string]int, len(tickers))
	if p.deps.News == nil || p.deps.Scorer == nil {
		return map[string]contracts.SentimentSignal{}, counts
	}

	to := runDate.Add(24*time.Hour - time.Second)
	from := to.Add(-p.newsCfg.Window)

	var docs []sentiment.ScoredDoc
	for _, ticker := range tickers {
		articles, err := p.deps.News.CompanyNews(ctx, ticker, from, to, p.newsCfg.PageSize)
		if err != nil {
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("News fetch failed, proceeding with no articles")
			continue
		}
		if len(articles) == 0 {
			continue
		}

		titles := make([]string, len(articles))
		for i, a := range articles {
			titles[i] = a.Title
		}
		scores, err := p.deps.Scorer.ScoreTexts(ctx, titles)
		if err != nil {
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Sentiment scoring failed, proceeding with no articles")
			continue
		}
		for i, a := range articles {
			docs = append(docs, sentiment.ScoredDoc{Ticker: ticker, At: a.PublishedAt, Score: scores[i]})
		}
	}

	signals := sentiment.DailyMean(docs, runDate)
	for ticker, sig := range signals {
		counts[ticker] = sig.Count
	}
	return signals, counts
}

// fetchRedditSentiment pulls recent posts, attributes each to the
// first screened ticker it mentions, scores and aggregates them.
func (p *Pipeline) fetchRedditSentiment(ctx context.Context, screened []string, runDate time.Time) (map[string]contracts.SentimentSignal, map[string]int) {
	counts := make(map[string]int)
	if p.deps.Social == nil || p.deps.Scorer == nil {
		return map[string]contracts.SentimentSignal{}, counts
	}

	posts, err := p.deps.Social.RecentPosts(ctx, p.redditCfg.Lookback, p.redditCfg.LimitPerSub)
	if err != nil {
		p.logger.WithError(err).Warn("Social fetch failed, proceeding with no posts")
		return map[string]contracts.SentimentSignal{}, counts
	}

	tagger := social.NewTagger(social.DefaultTerms(screened))
	var tagged []contracts.Post
	var tickersByPost []string
	for _, post := range posts {
		if ticker, ok := tagger.Tag(post); ok {
			tagged = append(tagged, post)
			tickersByPost = append(tickersByPost, ticker)
		}
	}
	if len(tagged) == 0 {
		return map[string]contracts.SentimentSignal{}, counts
	}

	texts := make([]string, len(tagged))
	for i, post := range tagged {
		texts[i] = strings.TrimSpace(post.Title + " " + post.Body)
	}
	scores, err := p.deps.Scorer.ScoreTexts(ctx, texts)
	if err != nil {
		p.logger.WithError(err).Warn("Sentiment scoring failed, proceeding with no posts")
		return map[string]contracts.SentimentSignal{}, counts
	}

	docs := make([]sentiment.ScoredDoc, len(tagged))
	for i, post := range tagged {
		docs[i] = sentiment.ScoredDoc{Ticker: tickersByPost[i], At: post.CreatedAt, Score: scores[i]}
	}

	signals := sentiment.DailyMean(docs, runDate)
	for ticker, sig := range signals {
		counts[ticker] = sig.Count
	}
	return signals, counts
}

// fetchShortInterest degrades to an empty map on any failure: the
// squeeze channel just reads zero that day.
func (p *Pipeline) fetchShortInterest(ctx context.Context, tickers []string) map[string]float64 {
	if p.deps.ShortInt == nil || len(tickers) == 0 {
		return map[string]float64{}
	}
	si, err := p.deps.ShortInt.ShortInterest(ctx, tickers)
	if err != nil {
		p.logger.WithError(err).Warn("Short interest fetch failed, proceeding without")
		return map[string]float64{}
	}
	return si
}

func (p *Pipeline) rankCandidates(
	candidates []string,
	snaps, allSnaps map[string]contracts.PriceSnapshot,
	news, reddit map[string]contracts.SentimentSignal,
	shortInterest map[string]float64,
) []contracts.FactorScore {
	in := make([]rank.Candidate, 0, len(candidates))
	for _, t := range candidates {
		snap := snaps[t]

		var benchRet float64
		if bench, ok := allSnaps[rank.SectorETF(t)]; ok && bench.HasReturn5D {
			benchRet = bench.Return5D
		}

		in = append(in, rank.Candidate{
			Ticker:        t,
			Return5D:      snap.Return5D,
			BenchReturn5D: benchRet,
			ShortInterest: shortInterest[t],
			News:          news[t],
			Reddit:        reddit[t],
		})
	}
	return p.ranker.Rank(in)
}

// evaluateExits runs the exit engine over every open position and
// converts closes into SELL rows and closed-trade entries. The book
// comes back with closed positions removed.
func (p *Pipeline) evaluateExits(
	book ledger.Book,
	snaps map[string]contracts.PriceSnapshot,
	news, reddit map[string]contracts.SentimentSignal,
	runDate time.Time,
) ([]contracts.SignalRow, []contracts.ClosedTrade, ledger.Book) {
	var sellRows []contracts.SignalRow
	var closed []contracts.ClosedTrade

	// Iterate a copy: the book shrinks as positions close.
	open := make([]contracts.Position, len(book))
	copy(open, book)

	for _, pos := range open {
		snap, hasSnap := snaps[pos.Ticker]
		obs := exit.Observation{
			Price:      snap.Close,
			HasPrice:   hasSnap,
			Ret5:       snap.Return5D,
			HasRet5:    hasSnap && snap.HasReturn5D,
			NewsSent:   news[pos.Ticker].Norm,
			RedditSent: reddit[pos.Ticker].Norm,
		}

		decision := p.exits.Evaluate(pos, obs, runDate)
		if !decision.Close {
			continue
		}

		var removed contracts.Position
		var ok bool
		book, removed, ok = ledger.Close(book, pos.Ticker)
		if !ok {
			continue
		}

		pnl := decision.PnLPct
		sellRows = append(sellRows, contracts.SignalRow{
			Date:       runDate,
			Ticker:     pos.Ticker,
			Action:     contracts.ActionSell,
			Qty:        removed.Qty,
			EntryPrice: decision.Price,
			Confidence: 0.80,
			Reasons:    strings.Join(decision.Reasons, "; "),
			Features: contracts.Features{
				Ret5D:      obs.Ret5,
				NewsSent:   obs.NewsSent,
				RedditSent: obs.RedditSent,
				PnL:        &pnl,
			},
		})
		closed = append(closed, contracts.ClosedTrade{
			Ticker:     removed.Ticker,
			EntryDate:  removed.EntryDate,
			EntryPrice: removed.EntryPrice,
			ExitDate:   runDate,
			ExitPrice:  decision.Price,
			Qty:        removed.Qty,
			PnL:        (decision.Price - removed.EntryPrice) * float64(removed.Qty),
			Reasons:    decision.Reasons,
		})
	}

	return sellRows, closed, book
}

// buildEntryRows emits one BUY or HOLD row per screened ticker and
// opens positions for the sized BUYs. A BUY whose sized quantity is 0
// is downgraded to HOLD with the reason recorded; a ticker already in
// the book never double-buys.
func (p *Pipeline) buildEntryRows(
	screened []string,
	snaps map[string]contracts.PriceSnapshot,
	book ledger.Book,
	buySet map[string]bool,
	scores map[string]contracts.FactorScore,
	news, reddit map[string]contracts.SentimentSignal,
	newsCounts, redditCounts map[string]int,
	runDate time.Time,
) ([]contracts.SignalRow, ledger.Book) {
	rows := make([]contracts.SignalRow, 0, len(screened))

	for _, t := range screened {
		snap := snaps[t]

		var r5 float64
		if snap.HasReturn5D {
			r5 = snap.Return5D
		}
		fs := scores[t] // zero value for unranked tickers
		newsSent := news[t].Norm
		redditSent := reddit[t].Norm

		confidence := contracts.Clamp(max0(r5)*10*0.4+newsSent*0.6, 0, 0.99)

		row := contracts.SignalRow{
			Date:       runDate,
			Ticker:     t,
			Action:     contracts.ActionHold,
			EntryPrice: snap.Close,
			Confidence: confidence,
			Reasons: fmt.Sprintf("r5=%.3f, sent_mean=%.2f, n_news=%d, score=%.3f",
				r5, newsSent, newsCounts[t], fs.Combined),
			Features: contracts.Features{
				Ret5D:       r5,
				NewsSent:    newsSent,
				RedditSent:  redditSent,
				Squeeze:     fs.Squeeze,
				Score:       fs.Combined,
				NewsCount:   newsCounts[t],
				RedditCount: redditCounts[t],
			},
		}

		if buySet[t] && !ledger.Has(book, t) {
			qty := p.sizer.Size(snap.Close, p.strategy.StopLossPct)
			if qty == 0 {
				row.Reasons += ", qty=0"
			} else {
				row.Action = contracts.ActionBuy
				row.Qty = qty
				row.Stop = snap.Close * (1 - p.strategy.StopLossPct)
				row.TakeProfit = snap.Close * (1 + p.strategy.TakeProfitPct)
				book = ledger.Open(book, contracts.Position{
					Ticker:     t,
					Qty:        qty,
					EntryPrice: snap.Close,
					EntryDate:  runDate,
				}, p.logger)
			}
		}

		rows = append(rows, row)
	}

	return rows, book
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
