package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphalab",
	Short: "AlphaLab - quantitative research pipeline",
	Long: `AlphaLab Unified CLI

Leakage-safe walk-forward research: dataset loading, embargoed
cross-validation, volatility-targeted sizing, risk gates and a
cost-aware execution simulator, plus a live signal generator.

Usage:
  go run ./cmd/alphalab [command]

Examples:
  go run ./cmd/alphalab backtest run --from 2022-01-01 --to 2025-12-31
  go run ./cmd/alphalab signals generate
  go run ./cmd/alphalab serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy file (default from STRATEGY_FILE env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
