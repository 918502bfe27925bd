package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/internal/contracts"
)

func sampleRows() []contracts.SignalRow {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	pnl := -0.09
	return []contracts.SignalRow{
		{
			Date: date, Ticker: "BBB", Action: contracts.ActionSell,
			Qty: 7, EntryPrice: 91, Confidence: 0.80,
			Reasons:  "stop -8%; momentum<=0",
			Features: contracts.Features{Ret5D: -0.09, PnL: &pnl},
		},
		{
			Date: date, Ticker: "AAA", Action: contracts.ActionBuy,
			Qty: 113, EntryPrice: 110, Stop: 101.2, TakeProfit: 115.5, Confidence: 0.94,
			Reasons:  "r5=0.100, sent_mean=0.90, n_news=1, score=1.234",
			Features: contracts.Features{Ret5D: 0.10, NewsSent: 0.9, Score: 1.234, NewsCount: 1},
		},
		{
			Date: date, Ticker: "CCC", Action: contracts.ActionHold,
			EntryPrice: 101, Confidence: 0.04,
			Reasons: "r5=0.010, sent_mean=0.00, n_news=0, score=0.000",
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals_latest.csv")
	rows := sampleRows()

	require.NoError(t, WriteCSV(path, rows))

	loaded, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, "BBB", loaded[0].Ticker, "SELL rows keep their leading position")
	assert.Equal(t, contracts.ActionSell, loaded[0].Action)
	assert.Equal(t, 7, loaded[0].Qty)
	require.NotNil(t, loaded[0].Features.PnL)
	assert.InDelta(t, -0.09, *loaded[0].Features.PnL, 1e-12)

	assert.Equal(t, rows[1].Features, loaded[1].Features)
	assert.Equal(t, rows[1].Reasons, loaded[1].Reasons)
	assert.Equal(t, 113, loaded[1].Qty)
}

func TestMarkdownLayout(t *testing.T) {
	md := Markdown(sampleRows(), time.Date(2025, 6, 2, 21, 30, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(md, "# Daily Trade Signals\n"))
	assert.Contains(t, md, "_Generated: 2025-06-02 21:30 UTC_")
	assert.Contains(t, md, "| Date | Ticker | Action | Qty | Entry | Stop | Target | Conf | Reason |")
	assert.Contains(t, md, "| 2025-06-02 | AAA | BUY | 113 | 110.00 | 101.20 | 115.50 | 0.94 | r5=0.100, sent_mean=0.90, n_news=1, score=1.234 |")

	// Row order preserved: SELL first.
	sellIdx := strings.Index(md, "| 2025-06-02 | BBB | SELL")
	buyIdx := strings.Index(md, "| 2025-06-02 | AAA | BUY")
	require.Greater(t, sellIdx, 0)
	assert.Less(t, sellIdx, buyIdx)
}

func TestHTMLOrderingAndContent(t *testing.T) {
	sparks := map[string][]float64{
		"AAA": {100, 104, 102, 108, 110},
	}
	doc, err := HTML(sampleRows(), sparks, time.Date(2025, 6, 2, 21, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, doc, "1 SELL")
	assert.Contains(t, doc, "1 BUY")
	assert.Contains(t, doc, `<tr class="sell">`)
	assert.Contains(t, doc, `<tr class="buy">`)
	assert.Contains(t, doc, "<svg", "sparkline rendered for tickers with a series")

	// SELL before BUY before HOLD.
	sellIdx := strings.Index(doc, `<tr class="sell">`)
	buyIdx := strings.Index(doc, `<tr class="buy">`)
	holdIdx := strings.Index(doc, `<tr class="hold">`)
	require.Greater(t, sellIdx, 0)
	assert.Less(t, sellIdx, buyIdx)
	assert.Less(t, buyIdx, holdIdx)
}

func TestHTMLEscapesReasons(t *testing.T) {
	rows := sampleRows()
	rows[0].Reasons = `<script>alert("x")</script>`

	doc, err := HTML(rows, nil, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, doc, `<script>alert`)
	assert.Contains(t, doc, "&lt;script&gt;")
}
