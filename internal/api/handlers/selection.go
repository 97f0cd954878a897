package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/selection"
	"github.com/wonny/shortlist/pkg/logger"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Runner is the orchestrator surface used by the API
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
	Latest() *contracts.SelectionRun
}

// History reads persisted runs
type History interface {
	GetRun(ctx context.Context, runID string) (*contracts.SelectionRun, error)
	LatestRun(ctx context.Context) (*contracts.SelectionRun, error)
	ListRuns(ctx context.Context, limit int) ([]*contracts.SelectionRun, error)
}

// LatestSource reads the cached latest run of a strategy (nil, nil on miss)
type LatestSource interface {
	Get(ctx context.Context, strategyID string) (*contracts.SelectionRun, error)
}

// SelectionHandler handles selection API endpoints
// ⭐ SSOT: 선정 API 핸들러는 이 구조체에서만
type SelectionHandler struct {
	runner     Runner
	history    History // nil: DB 미설정
	latest     LatestSource
	strategyID string
	logger     *logger.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(runner Runner, history History, log *logger.Logger) *SelectionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SelectionHandler{
		runner:  runner,
		history: history,
		logger:  log.Module("api"),
	}
}

// WithLatestCache adds the Redis latest-run cache as a fallback behind history
func (h *SelectionHandler) WithLatestCache(src LatestSource, strategyID string) *SelectionHandler {
	h.latest = src
	h.strategyID = strategyID
	return h
}

// RunResponse is returned by a manual run
type RunResponse struct {
	Run             *contracts.SelectionRun `json:"run"`
	CompletedStages []contracts.Stage       `json:"completed_stages"`
	Persisted       bool                    `json:"persisted"`
}

// Run triggers a selection immediately
// POST /api/selection/run?k=10&dry_run=true
func (h *SelectionHandler) Run(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg := brain.RunConfig{}

	if raw := q.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		cfg.K = &k
	}

	if raw := q.Get("dry_run"); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "dry_run must be a boolean")
			return
		}
		cfg.DryRun = dryRun
	}

	result, err := h.runner.Run(r.Context(), cfg)
	if err != nil {
		h.logger.WithError(err).Error("Selection run failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{
		Run:             result.Run,
		CompletedStages: result.CompletedStages,
		Persisted:       result.Persisted,
	})
}

// Latest returns the most recent run
// GET /api/selection/latest
func (h *SelectionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.history != nil {
		run, err := h.history.LatestRun(r.Context())
		if err == nil {
			respondJSON(w, http.StatusOK, run)
			return
		}
		if !errors.Is(err, selection.ErrRunNotFound) {
			h.logger.WithError(err).Error("Failed to load latest run")
			respondError(w, http.StatusInternalServerError, "failed to load latest run")
			return
		}
	}

	// 다른 프로세스가 발행한 실행은 Redis에만 있을 수 있음
	if h.latest != nil {
		run, err := h.latest.Get(r.Context(), h.strategyID)
		if err != nil {
			h.logger.WithError(err).Warn("Latest run cache read failed")
		}
		if run != nil {
			respondJSON(w, http.StatusOK, run)
			return
		}
	}

	// DB 없음 또는 이력 없음: 프로세스 메모리의 마지막 실행
	if run := h.runner.Latest(); run != nil {
		respondJSON(w, http.StatusOK, run)
		return
	}
	respondError(w, http.StatusNotFound, "no selection run yet")
}

// ListRuns returns recent runs, newest first
// GET /api/selection/runs?limit=20
func (h *SelectionHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one run by id
// GET /api/selection/runs/{id}
func (h *SelectionHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	runID := mux.Vars(r)["id"]
	// run_id 컬럼은 UUID → 형식이 다르면 조회하지 않음
	if _, err := uuid.Parse(runID); err != nil {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}

	run, err := h.history.GetRun(r.Context(), runID)
	if errors.Is(err, selection.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.Run(runID).WithError(err).Error("Failed to load run")
		respondError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// statusFor maps run errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, brain.ErrRunInProgress):
		return http.StatusConflict
	case selection.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
