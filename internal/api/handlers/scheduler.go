package handlers

import (
	"net/http"

	"github.com/wonny/shortlist/internal/scheduler"
)

// JobStatsProvider exposes scheduler statistics
type JobStatsProvider interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SchedulerHandler serves scheduler status
type SchedulerHandler struct {
	stats JobStatsProvider
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(stats JobStatsProvider) *SchedulerHandler {
	return &SchedulerHandler{stats: stats}
}

// Jobs returns per-job run statistics
// GET /api/scheduler/jobs
func (h *SchedulerHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.GetJobStats())
}
