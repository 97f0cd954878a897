package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "selector",
	Short: "Shortlist selector - 다중 지표 기반 종목 후보 선정",
	Long: `Shortlist Selector CLI

시가총액, 365일 배당 지급액, 7거래일 거래량을 각각 dense rank로 변환하고
순위 합이 가장 작은 K개 종목을 선정합니다.

Usage:
  go run ./cmd/selector [command]

Examples:
  go run ./cmd/selector select --k 5
  go run ./cmd/selector api --with-scheduler
  go run ./cmd/selector strategy validate
  go run ./cmd/selector test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_PATH or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
