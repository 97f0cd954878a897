package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// universeCmd prints the configured universe in canonical order
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "랭킹 대상 유니버스 출력",
	Long: `전략 파일의 유니버스를 정규 순서(동점 처리 순서)대로 출력합니다.

Example:
  go run ./cmd/selector universe
  go run ./cmd/selector universe --strategy config/strategy/candidates_v1.yaml`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	strategy, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Universe", [][2]string{
		{"Strategy", strategy.Meta.StrategyID},
		{"Count", strconv.Itoa(len(strategy.Universe.Symbols))},
		{"Metrics", strings.Join(strategy.Selection.Metrics, ", ")},
		{"Top K", strconv.Itoa(strategy.Selection.TopK)},
	})
	PrintNumberedList(strategy.Universe.Symbols)
	fmt.Fprintln(out)
	return nil
}
