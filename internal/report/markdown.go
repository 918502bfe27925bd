package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
)

// Markdown renders the signal table as a Markdown document.
func Markdown(rows []contracts.SignalRow, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Daily Trade Signals\n")
	fmt.Fprintf(&b, "_Generated: %s_\n\n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("| Date | Ticker | Action | Qty | Entry | Stop | Target | Conf | Reason |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---|\n")

	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %.2f | %.2f | %.2f | %.2f | %s |\n",
			r.Date.Format(contracts.DateLayout), r.Ticker, r.Action, r.Qty,
			r.EntryPrice, r.Stop, r.TakeProfit, r.Confidence, r.Reasons)
	}

	return b.String()
}
