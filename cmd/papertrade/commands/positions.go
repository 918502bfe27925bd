package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show the open paper positions",
	Long: `Prints the current position book from the configured ledger
store.

Example:
  go run ./cmd/papertrade positions`,
	RunE: runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	store, closeStore, err := newStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	book, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	if len(book) == 0 {
		fmt.Println("No open positions.")
		return nil
	}

	today := time.Now().UTC()
	fmt.Printf("%-8s %8s %12s %12s %6s\n", "TICKER", "QTY", "ENTRY", "DATE", "DAYS")
	for _, pos := range book {
		fmt.Printf("%-8s %8d %12.2f %12s %6d\n",
			pos.Ticker, pos.Qty, pos.EntryPrice,
			pos.EntryDate.Format(contracts.DateLayout), pos.DaysHeld(today))
	}
	fmt.Printf("\n%d open position(s)\n", len(book))

	return nil
}
