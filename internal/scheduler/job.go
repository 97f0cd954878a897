package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrSkipped is returned (wrapped) by a job that chose not to run, e.g. on overlap.
// A skipped run is recorded but never retried.
var ErrSkipped = errors.New("job skipped")

// historyLimit caps the results kept per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule returns a cron spec with a leading seconds field,
	// optionally prefixed with CRON_TZ=<zone>. e.g. "0 30 16 * * 1-5", "@daily"
	Schedule() string
}

// JobResult is one execution including its retries
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory is an oldest-first log of results, bounded by historyLimit
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest past the limit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Failed returns the runs that neither succeeded nor skipped
func (h *JobHistory) Failed() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success && !r.Skipped {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is successes over attempted (non-skipped) runs, 0 when nothing ran
func (h *JobHistory) SuccessRate() float64 {
	var ran, ok int
	for _, r := range h.Results {
		if r.Skipped {
			continue
		}
		ran++
		if r.Success {
			ok++
		}
	}
	if ran == 0 {
		return 0
	}
	return float64(ok) / float64(ran)
}

// Stats summarizes the history of one job
func (h *JobHistory) Stats(name, schedule string) JobStats {
	stats := JobStats{
		JobName:     name,
		Schedule:    schedule,
		TotalRuns:   len(h.Results),
		SuccessRate: h.SuccessRate(),
	}

	for i := range h.Results {
		r := h.Results[i]
		switch {
		case r.Skipped:
			stats.SkipCount++
		case r.Success:
			stats.SuccessCount++
			stats.LastSuccess = &h.Results[i].StartTime
		default:
			stats.FailureCount++
			stats.LastFailure = &h.Results[i].StartTime
		}
	}
	if n := len(h.Results); n > 0 {
		stats.LastRun = &h.Results[n-1].StartTime
	}
	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SkipCount    int        `json:"skip_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}
