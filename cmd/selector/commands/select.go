package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/contracts"
)

var (
	selectK      int
	selectDryRun bool
	selectJSON   bool
)

// selectCmd runs one selection and prints the shortlist
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "후보 종목 선정 1회 실행",
	Long: `유니버스 전체의 지표를 수집하고 Top K 후보를 출력합니다.

수집 실패 지표는 0으로 대체되며 (on_failure: zero), 결과와 함께 표시됩니다.
DATABASE_URL이 설정되어 있고 --dry-run이 아니면 실행 이력을 저장합니다.

Example:
  go run ./cmd/selector select
  go run ./cmd/selector select --k 5 --dry-run
  go run ./cmd/selector select --strategy config/strategy/candidates_v1.yaml --json`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().IntVar(&selectK, "k", 0, "shortlist size (default: strategy top_k)")
	selectCmd.Flags().BoolVar(&selectDryRun, "dry-run", false, "skip run history persistence")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "print the run as JSON")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptible(cmd.Context())
	defer stop()

	a, err := newApp(ctx, !selectDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	runCfg := brain.RunConfig{DryRun: selectDryRun}
	if cmd.Flags().Changed("k") {
		k := selectK
		runCfg.K = &k
	}

	if !selectJSON {
		PrintHeader("Shortlist Selection", [][2]string{
			{"Strategy", a.strategy.Meta.StrategyID},
			{"Universe", strconv.Itoa(len(a.strategy.Universe.Symbols))},
			{"Metrics", strings.Join(a.strategy.Selection.Metrics, ", ")},
			{"Started", time.Now().Format(time.RFC3339)},
		})
	}

	result, err := a.orchestrator.Run(ctx, runCfg)
	if err != nil {
		if !selectJSON {
			PrintError(err.Error())
		}
		return err
	}

	if selectJSON {
		return printRunJSON(result.Run)
	}

	printShortlist(result.Run.Shortlist)
	if verbose {
		printReport(result.Run.Report)
	}

	fmt.Fprintln(out)
	PrintKeyValue("Run ID", result.Run.RunID, 9)
	PrintKeyValue("Hash", result.Run.StrategyHash[:12], 9)
	PrintKeyValue("Persisted", strconv.FormatBool(result.Persisted), 9)
	PrintSuccess(fmt.Sprintf("Selected %d of %d in %.2fs",
		result.Run.Shortlist.Len(), result.Run.Shortlist.Universe, result.Run.Duration.Seconds()))
	return nil
}

// printRunJSON writes the run as indented JSON
func printRunJSON(run *contracts.SelectionRun) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// printShortlist renders the shortlist as a table with one rank column per metric
func printShortlist(s *contracts.Shortlist) {
	if s.Len() == 0 {
		PrintWarning("Shortlist is empty")
		return
	}

	columns := []string{"#", "Symbol", "Score"}
	widths := []int{3, 8, 5}
	for _, m := range s.Metrics {
		columns = append(columns, m)
		widths = append(widths, max(len(m), 4))
	}

	fmt.Fprintln(out)
	PrintTableHeader(columns, widths)
	for _, e := range s.Entries {
		row := []string{strconv.Itoa(e.Position), e.Symbol, strconv.Itoa(e.Score)}
		for _, m := range s.Metrics {
			row = append(row, strconv.Itoa(e.Ranks[m]))
		}
		PrintTableRow(row, widths)
	}
}

// printReport lists the collection summary and every zero-filled field
func printReport(r *contracts.CollectionReport) {
	if r == nil {
		return
	}

	fmt.Fprintln(out)
	PrintSeparator()
	PrintKeyValue("Total", strconv.Itoa(r.Total), 10)
	PrintKeyValue("Cache hits", strconv.Itoa(r.CacheHits), 10)
	PrintKeyValue("Degraded", strconv.Itoa(r.DegradedCount()), 10)
	PrintKeyValue("Collect", r.Duration.Round(time.Millisecond).String(), 10)

	if r.DegradedCount() == 0 {
		return
	}

	symbols := make([]string, 0, len(r.Degraded))
	for sym := range r.Degraded {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	items := make([]string, len(symbols))
	for i, sym := range symbols {
		items[i] = fmt.Sprintf("%s: %s → 0", sym, strings.Join(r.Degraded[sym], ", "))
	}
	PrintWarning("Zero-filled metrics (provider failures)")
	PrintNumberedList(items)
}

// interruptible returns a context cancelled on SIGINT/SIGTERM
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
