package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/selection"
	"github.com/wonny/shortlist/internal/strategyconfig"
	"github.com/wonny/shortlist/pkg/logger"
	"github.com/wonny/shortlist/pkg/metrics"
)

// ErrRunInProgress is returned when a run is requested while another is active
var ErrRunInProgress = errors.New("selection run already in progress")

// TableSource produces a populated metric table for a universe
type TableSource interface {
	CollectTable(ctx context.Context, symbols []string) (*selection.MetricTable, *contracts.CollectionReport, error)
}

// RunStore persists completed runs
type RunStore interface {
	SaveRun(ctx context.Context, run *contracts.SelectionRun) error
}

// Publisher fans a completed run out to live subscribers
type Publisher interface {
	Publish(run *contracts.SelectionRun)
}

// Orchestrator coordinates collect → select → persist → publish
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	strategy     *strategyconfig.Config
	strategyHash string

	source    TableSource
	selector  *selection.Selector
	store     RunStore
	publisher Publisher
	recorder  *metrics.Recorder

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *contracts.SelectionRun

	logger *logger.Logger
	now    func() time.Time
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID  string // generated when empty
	K      *int   // strategy top_k when nil
	DryRun bool   // If true, skip persistence
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	Run             *contracts.SelectionRun
	CompletedStages []contracts.Stage
	Persisted       bool
}

// NewOrchestrator creates a new orchestrator for one strategy
func NewOrchestrator(strategy *strategyconfig.Config, source TableSource, log *logger.Logger) (*Orchestrator, error) {
	if strategy == nil {
		return nil, errors.New("strategy is required")
	}
	if source == nil {
		return nil, errors.New("table source is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	return &Orchestrator{
		strategy:     strategy,
		strategyHash: hash,
		source:       source,
		selector:     selection.NewSelector(strategy.Selection.Metrics, log),
		logger:       log.Module("brain"),
		now:          time.Now,
	}, nil
}

// WithStore enables run history
func (o *Orchestrator) WithStore(store RunStore) *Orchestrator {
	o.store = store
	return o
}

// WithPublisher enables live fan-out
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publisher = p
	return o
}

// WithMetrics enables Prometheus recording
func (o *Orchestrator) WithMetrics(rec *metrics.Recorder) *Orchestrator {
	o.recorder = rec
	return o
}

// Strategy returns the active strategy
func (o *Orchestrator) Strategy() *strategyconfig.Config {
	return o.strategy
}

// StrategyHash returns the audit hash of the active strategy
func (o *Orchestrator) StrategyHash() string {
	return o.strategyHash
}

// Latest returns the last successful run of this process, or nil
func (o *Orchestrator) Latest() *contracts.SelectionRun {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest
}

// Run executes one selection. Only one run may be active at a time.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	if !o.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.runMu.Unlock()

	startTime := o.now()

	k := o.strategy.Selection.TopK
	if config.K != nil {
		k = *config.K
	}
	runID := config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	result := &RunResult{CompletedStages: make([]contracts.Stage, 0, 4)}
	log := o.logger.Run(runID)

	log.WithFields(map[string]interface{}{
		"strategy_id": o.strategy.Meta.StrategyID,
		"universe":    len(o.strategy.Universe.Symbols),
		"k":           k,
		"dry_run":     config.DryRun,
	}).Info("Starting selection run")

	// Collect
	stageStart := time.Now()
	table, report, err := o.source.CollectTable(ctx, o.strategy.Universe.Symbols)
	o.recorder.ObserveStage(contracts.StageCollect.String(), time.Since(stageStart))
	if err != nil {
		return o.fail(log, result, contracts.StageCollect, err)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageCollect)

	// Select
	stageStart = time.Now()
	shortlist, err := o.selector.Select(table, k)
	o.recorder.ObserveStage(contracts.StageSelect.String(), time.Since(stageStart))
	if err != nil {
		return o.fail(log, result, contracts.StageSelect, err)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageSelect)

	run := &contracts.SelectionRun{
		RunID:        runID,
		StrategyID:   o.strategy.Meta.StrategyID,
		StrategyHash: o.strategyHash,
		CreatedAt:    startTime,
		Duration:     o.now().Sub(startTime),
		Shortlist:    shortlist,
		Report:       report,
	}
	result.Run = run

	// Persist (DB 설정 + dry-run 아님)
	if o.store != nil && !config.DryRun {
		stageStart = time.Now()
		err := o.store.SaveRun(ctx, run)
		o.recorder.ObserveStage(contracts.StagePersist.String(), time.Since(stageStart))
		if err != nil {
			return o.fail(log, result, contracts.StagePersist, err)
		}
		result.Persisted = true
		result.CompletedStages = append(result.CompletedStages, contracts.StagePersist)
	}

	o.mu.Lock()
	o.latest = run
	o.mu.Unlock()

	o.recorder.RecordRun(nil, shortlist.Universe, shortlist.Len(), report.DegradedCount())

	// Publish
	if o.publisher != nil {
		o.publisher.Publish(run)
		result.CompletedStages = append(result.CompletedStages, contracts.StagePublish)
	}

	log.WithFields(map[string]interface{}{
		"selected":  shortlist.Symbols(),
		"degraded":  report.DegradedCount(),
		"persisted": result.Persisted,
		"duration":  run.Duration,
	}).Info("Selection run completed")

	return result, nil
}

func (o *Orchestrator) fail(log *logger.Logger, result *RunResult, stage contracts.Stage, err error) (*RunResult, error) {
	o.recorder.RecordRun(err, 0, 0, 0)
	log.WithField("stage", stage.String()).WithError(err).Error("Selection run failed")
	return result, fmt.Errorf("%s failed: %w", stage, err)
}
