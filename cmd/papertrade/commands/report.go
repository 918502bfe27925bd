package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmorrow/papertrade/internal/api"
	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/internal/marketdata"
	"github.com/kmorrow/papertrade/internal/report"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
	"github.com/kmorrow/papertrade/pkg/redis"
)

const sparkDays = 30

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render Markdown and HTML reports from the latest signals",
	Long: `Reads <data-dir>/signals_latest.csv and writes
<out>/daily_signals.md plus <out>/index.html (and a dated archive
copy). The HTML report includes a 30-day close sparkline per ticker
when price data is reachable.

Example:
  go run ./cmd/papertrade report
  go run ./cmd/papertrade report --out reports`,
	RunE: runReport,
}

var reportOutDir string

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportOutDir, "out", "reports", "report output directory")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	rows, err := report.ReadCSV(filepath.Join(cfg.DataDir, api.SignalsFile))
	if err != nil {
		return fmt.Errorf("read signals (run the pipeline first): %w", err)
	}

	if err := os.MkdirAll(reportOutDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	now := time.Now().UTC()

	mdPath := filepath.Join(reportOutDir, "daily_signals.md")
	if err := os.WriteFile(mdPath, []byte(report.Markdown(rows, now)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	fmt.Printf("Wrote %s\n", mdPath)

	sparks := fetchSparklines(cmd.Context(), cfg, log, rows)

	htmlPath := filepath.Join(reportOutDir, "index.html")
	if err := report.WriteHTML(htmlPath, rows, sparks, now); err != nil {
		return err
	}
	archivePath := filepath.Join(reportOutDir, now.Format(contracts.DateLayout)+".html")
	if err := report.WriteHTML(archivePath, rows, sparks, now); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", htmlPath)

	return nil
}

// fetchSparklines pulls a short close series per ticker for the HTML
// report. Any failure just means a report without sparklines.
func fetchSparklines(ctx context.Context, cfg *config.Config, log *logger.Logger, rows []contracts.SignalRow) map[string][]float64 {
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, skipping sparklines cache")
		return nil
	}
	defer redisClient.Close()

	seen := make(map[string]bool)
	var tickers []string
	for _, row := range rows {
		if !seen[row.Ticker] {
			seen[row.Ticker] = true
			tickers = append(tickers, row.Ticker)
		}
	}

	provider := marketdata.NewYahooProvider(redis.NewCache(redisClient, "papertrade"), log)
	// Extra calendar days cover weekends and holidays.
	history, err := provider.History(ctx, tickers, sparkDays*2)
	if err != nil {
		log.WithError(err).Warn("Price fetch failed, rendering report without sparklines")
		return nil
	}

	sparks := make(map[string][]float64, len(history))
	for ticker, candles := range history {
		if len(candles) > sparkDays {
			candles = candles[len(candles)-sparkDays:]
		}
		closes := make([]float64, len(candles))
		for i, c := range candles {
			closes[i] = c.Close
		}
		sparks[ticker] = closes
	}
	return sparks
}
