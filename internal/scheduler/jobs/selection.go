package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/scheduler"
	"github.com/wonny/shortlist/pkg/logger"
)

// Runner is the part of the orchestrator a job needs
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// SelectionJob runs the shortlist selection on the strategy schedule
// ⭐ SSOT: 정기 선정 실행은 이 Job에서만
type SelectionJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewSelectionJob creates a new selection job
func NewSelectionJob(runner Runner, schedule string, log *logger.Logger) *SelectionJob {
	if log == nil {
		log = logger.Nop()
	}
	return &SelectionJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.Module("jobs"),
	}
}

// Name returns the job name
func (j *SelectionJob) Name() string {
	return "shortlist_selection"
}

// Schedule returns the cron schedule (with seconds)
func (j *SelectionJob) Schedule() string {
	return j.schedule
}

// Run executes one persisted selection run
func (j *SelectionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled selection")

	result, err := j.runner.Run(ctx, brain.RunConfig{})
	if errors.Is(err, brain.ErrRunInProgress) {
		// 수동 실행과 겹침: 재시도 불필요
		return fmt.Errorf("%w: %v", scheduler.ErrSkipped, err)
	}
	if err != nil {
		return fmt.Errorf("selection run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.Run.RunID,
		"selected": result.Run.Shortlist.Symbols(),
	}).Info("Scheduled selection completed")

	return nil
}
