package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmorrow/papertrade/internal/api"
	"github.com/kmorrow/papertrade/internal/report"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate today's trading signals",
	Long: `Runs the full signal pipeline once: load the universe, fetch
prices, screen, rank, evaluate exits for open positions, size new
entries, update the paper ledger and write the signal table to
<data-dir>/signals_latest.csv.

Example:
  go run ./cmd/papertrade run`,
	RunE: runSignals,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	return generateSignals(cmd.Context(), cfg, log)
}

// generateSignals runs one pipeline pass and persists the signal
// table. The schedule command reuses it as its job body.
func generateSignals(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	pipe, _, cleanup, err := newPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipe.Run(ctx)
	if err != nil {
		return fmt.Errorf("signal run failed: %w", err)
	}

	signalsPath := filepath.Join(cfg.DataDir, api.SignalsFile)
	if err := report.WriteCSV(signalsPath, result.Rows); err != nil {
		return err
	}

	sells := "None"
	if len(result.Sells) > 0 {
		sells = strings.Join(result.Sells, ", ")
	}
	buys := "None"
	if len(result.Buys) > 0 {
		buys = strings.Join(result.Buys, ", ")
	}
	fmt.Printf("Signals written to %s\n", signalsPath)
	fmt.Printf("Sells: %s | Buys: %s\n", sells, buys)

	return nil
}
