package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/shortlist/internal/strategyconfig"
)

// strategyCmd groups strategy file utilities
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 파일 검증/해시",
}

var strategyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "전략 파일 검증",
	Long: `전략 YAML을 파싱하고 모든 규칙을 검사합니다.
(알 수 없는 필드, 유니버스 심볼 형식/중복, 지표 이름, 타임존, cron)

Example:
  go run ./cmd/selector strategy validate --strategy config/strategy/candidates_v1.yaml`,
	RunE: runStrategyValidate,
}

var strategyHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "전략 해시 출력 (실행 이력의 strategy_hash와 동일)",
	RunE:  runStrategyHash,
}

func init() {
	strategyCmd.AddCommand(strategyValidateCmd)
	strategyCmd.AddCommand(strategyHashCmd)
	rootCmd.AddCommand(strategyCmd)
}

func runStrategyValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategy, err := loadStrategy(cfg)
	if err != nil {
		var verr strategyconfig.ValidationError
		if errors.As(err, &verr) {
			PrintError(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
		} else {
			PrintError(err.Error())
		}
		return err
	}

	PrintSuccess(fmt.Sprintf("Strategy %s (v%s) is valid", strategy.Meta.StrategyID, strategy.Meta.Version))
	PrintKeyValue("Universe", fmt.Sprintf("%d symbols", len(strategy.Universe.Symbols)), 9)
	PrintKeyValue("Top K", fmt.Sprintf("%d", strategy.Selection.TopK), 9)
	PrintKeyValue("Policy", strategy.Collection.OnFailure, 9)
	return nil
}

func runStrategyHash(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	strategy, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}
	fmt.Fprintln(out, hash)
	return nil
}
