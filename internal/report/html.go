package report

import (
	"fmt"
	"html/template"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
)

const (
	sparkWidth  = 120
	sparkHeight = 28
	sparkPad    = 4
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="en">
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Daily Trade Signals</title>
<style>
  :root {
    --bg:#0b0c10; --card:#111317; --ink:#e6e8eb; --muted:#9aa3ad;
    --buy-bg:#0a3622; --sell-bg:#2c0b0e; --bar:#2a2e36; --fill:#4aa3ff;
  }
  * { box-sizing: border-box; }
  body { margin: 24px; font: 15px/1.5 -apple-system, BlinkMacSystemFont, Segoe UI, Roboto, sans-serif; color:var(--ink); background:var(--bg); }
  h1 { margin: 0 0 6px; font-size: 22px; }
  .sub { color:var(--muted); margin:0 0 18px; }
  .pill { display:inline-block; padding:2px 8px; border-radius:999px; font-size:12px; margin-left:8px; background:#1c1f25; color:var(--muted); }
  .wrap { border:1px solid #1a1d23; background:var(--card); border-radius:14px; padding:12px; }
  table { width:100%; border-collapse: collapse; }
  th, td { border-bottom:1px solid #1a1d23; padding:10px 8px; vertical-align:middle; }
  th { text-align:left; position:sticky; top:0; background:var(--card); z-index:1; }
  tr.buy td { background: var(--buy-bg); }
  tr.sell td { background: var(--sell-bg); }
  td.num { text-align:right; white-space:nowrap; }
  td.small { color:var(--muted); font-size: 12px; }
  .bar { position:relative; height:8px; background:var(--bar); border-radius:6px; overflow:hidden; margin-top:6px; }
  .fill { position:absolute; left:0; top:0; bottom:0; background:var(--fill); }
  .legend { color:var(--muted); font-size:13px; margin-top:10px; }
</style>

<h1>Daily Trade Signals <span class="pill">{{.SellCount}} SELL &middot; {{.BuyCount}} BUY</span></h1>
<div class="sub">Generated {{.Generated}}</div>

<div class="wrap">
  <table>
    <thead>
      <tr>
        <th>Ticker</th>
        <th>Action</th>
        <th>Entry</th>
        <th>Confidence</th>
        <th>30d</th>
        <th>Reason</th>
        <th>Features</th>
      </tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr class="{{.Class}}">
        <td><b>{{.Ticker}}</b></td>
        <td>{{.Action}}</td>
        <td class="num">{{printf "%.2f" .EntryPrice}}</td>
        <td class="num">{{printf "%.2f" .Confidence}}<div class="bar"><div class="fill" style="width:{{.ConfPct}}%;"></div></div></td>
        <td>{{.Spark}}</td>
        <td>{{.Reasons}}</td>
        <td class="small">{{.FeaturesJSON}}</td>
      </tr>
{{- end}}
    </tbody>
  </table>
  <div class="legend">SELL rows appear first, then BUY by confidence, then HOLD. Sparklines show the recent closes.</div>
</div>
</html>
`))

type htmlRow struct {
	Ticker       string
	Action       contracts.Action
	Class        string
	EntryPrice   float64
	Confidence   float64
	ConfPct      int
	Spark        template.HTML
	Reasons      string
	FeaturesJSON string
}

type htmlData struct {
	Generated string
	BuyCount  int
	SellCount int
	Rows      []htmlRow
}

// HTML renders the signal table as a standalone HTML page. sparks maps
// ticker to its recent close series for the inline sparkline column;
// missing tickers just render without one.
func HTML(rows []contracts.SignalRow, sparks map[string][]float64, generatedAt time.Time) (string, error) {
	ordered := make([]contracts.SignalRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := actionRank(ordered[i].Action), actionRank(ordered[j].Action)
		if ri != rj {
			return ri < rj
		}
		return ordered[i].Confidence > ordered[j].Confidence
	})

	data := htmlData{Generated: generatedAt.UTC().Format("2006-01-02 15:04 UTC")}
	for _, r := range ordered {
		switch r.Action {
		case contracts.ActionBuy:
			data.BuyCount++
		case contracts.ActionSell:
			data.SellCount++
		}
		data.Rows = append(data.Rows, htmlRow{
			Ticker:       r.Ticker,
			Action:       r.Action,
			Class:        strings.ToLower(string(r.Action)),
			EntryPrice:   r.EntryPrice,
			Confidence:   r.Confidence,
			ConfPct:      int(math.Round(contracts.Clamp(r.Confidence, 0, 0.99) * 100)),
			Spark:        sparkline(sparks[r.Ticker]),
			Reasons:      r.Reasons,
			FeaturesJSON: r.Features.JSON(),
		})
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return b.String(), nil
}

// WriteHTML renders and writes the page to path.
func WriteHTML(path string, rows []contracts.SignalRow, sparks map[string][]float64, generatedAt time.Time) error {
	doc, err := HTML(rows, sparks, generatedAt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}

func actionRank(a contracts.Action) int {
	switch a {
	case contracts.ActionSell:
		return 0
	case contracts.ActionBuy:
		return 1
	default:
		return 2
	}
}

// sparkline builds a tiny inline SVG polyline for a close series.
func sparkline(series []float64) template.HTML {
	if len(series) < 2 {
		return ""
	}

	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1e-9
	}

	var path strings.Builder
	for i, v := range series {
		x := sparkPad + float64(i)*(sparkWidth-2*sparkPad)/float64(len(series)-1)
		y := sparkHeight - sparkPad - (v-lo)*(sparkHeight-2*sparkPad)/span
		if i == 0 {
			fmt.Fprintf(&path, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&path, " L%.1f,%.1f", x, y)
		}
	}

	svg := fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d"><path d="%s" fill="none" stroke="currentColor" stroke-width="1.5"/></svg>`,
		sparkWidth, sparkHeight, sparkWidth, sparkHeight, path.String())
	return template.HTML(svg)
}
