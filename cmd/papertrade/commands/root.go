package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "Daily equity trading-signal generator",
	Long: `papertrade generates daily BUY/SELL/HOLD signals for a US equity
universe: screen by price and liquidity, rank by momentum, relative
strength, news and social sentiment and a short-squeeze factor,
evaluate exits for open paper positions and size new entries under
fixed fractional risk.

Usage:
  go run ./cmd/papertrade [command]

Examples:
  go run ./cmd/papertrade run
  go run ./cmd/papertrade report
  go run ./cmd/papertrade positions
  go run ./cmd/papertrade serve
  go run ./cmd/papertrade schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
