package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/shortlist/pkg/logger"
)

// RunPruner deletes stored runs created before a cutoff
type RunPruner interface {
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// HistoryCleanupJob drops selection runs past the retention window
type HistoryCleanupJob struct {
	pruner    RunPruner
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewHistoryCleanupJob creates a new history cleanup job
func NewHistoryCleanupJob(pruner RunPruner, retention time.Duration, log *logger.Logger) *HistoryCleanupJob {
	if log == nil {
		log = logger.Nop()
	}
	return &HistoryCleanupJob{
		pruner:    pruner,
		retention: retention,
		logger:    log.Module("jobs"),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *HistoryCleanupJob) Name() string {
	return "history_cleanup"
}

// Schedule returns the cron schedule (daily at 3 AM)
func (j *HistoryCleanupJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes the history cleanup
func (j *HistoryCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled history cleanup")

	count, err := j.pruner.PruneRuns(ctx, j.now().Add(-j.retention))
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}

	if count > 0 {
		j.logger.WithField("removed", count).Info("History cleanup completed")
	}

	return nil
}
