package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/shortlist/internal/contracts"
)

var runsLimit int

// runsCmd lists stored selection runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "최근 선정 실행 이력 조회",
	Long: `저장된 선정 실행 이력을 최신순으로 출력합니다. DATABASE_URL이 필요합니다.

Example:
  go run ./cmd/selector runs
  go run ./cmd/selector runs --limit 5`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	if runsLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.repo == nil {
		return errHistoryDisabled
	}

	runs, err := a.repo.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		PrintInfo("No runs stored yet")
		return nil
	}

	printRuns(runs)
	return nil
}

// printRuns renders stored runs newest first
func printRuns(runs []*contracts.SelectionRun) {
	columns := []string{"Run ID", "Created", "Strategy", "K", "Shortlist"}
	widths := []int{8, 20, 16, 3, 40}

	PrintTableHeader(columns, widths)
	for _, run := range runs {
		id := run.RunID
		if len(id) > 8 {
			id = id[:8]
		}

		var k, symbols string
		if run.Shortlist != nil {
			k = strconv.Itoa(run.Shortlist.Len())
			symbols = strings.Join(run.Shortlist.Symbols(), ",")
		}

		PrintTableRow([]string{
			id,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.StrategyID,
			k,
			symbols,
		}, widths)
	}
}
