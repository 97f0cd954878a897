package brain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/selection"
	"github.com/wonny/shortlist/internal/strategyconfig"
	"github.com/wonny/shortlist/pkg/metrics"
)

type fakeSource struct {
	rows    map[string][3]float64
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeSource) CollectTable(ctx context.Context, symbols []string) (*selection.MetricTable, *contracts.CollectionReport, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	if f.err != nil {
		return nil, nil, f.err
	}

	table := selection.NewMetricTable()
	for _, s := range symbols {
		if err := table.AddEntity(s); err != nil {
			return nil, nil, err
		}
		v := f.rows[s]
		table.SetMetric(s, contracts.MetricMarketCap, v[0])
		table.SetMetric(s, contracts.MetricDividendPayout, v[1])
		table.SetMetric(s, contracts.MetricVolume7D, v[2])
		table.SetMetric(s, contracts.MetricSharesOutstanding, 0)
	}
	return table, &contracts.CollectionReport{Total: len(symbols), Degraded: map[string][]string{}}, nil
}

type fakeStore struct {
	runs []*contracts.SelectionRun
	err  error
}

func (f *fakeStore) SaveRun(ctx context.Context, run *contracts.SelectionRun) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	runs []*contracts.SelectionRun
}

func (f *fakePublisher) Publish(run *contracts.SelectionRun) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
}

func testStrategy() *strategyconfig.Config {
	cfg := strategyconfig.Default()
	cfg.Universe.Symbols = []string{"A", "B", "C"}
	cfg.Selection.TopK = 2
	return cfg
}

func scenarioSource() *fakeSource {
	return &fakeSource{rows: map[string][3]float64{
		"A": {100, 0, 10},
		"B": {100, 0, 20},
		"C": {50, 5, 20},
	}}
}

func intPtr(v int) *int { return &v }

func TestRun_FullPipeline(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}

	o, err := NewOrchestrator(testStrategy(), scenarioSource(), nil)
	require.NoError(t, err)
	o.WithStore(store).WithPublisher(pub).WithMetrics(metrics.New())

	result, err := o.Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	run := result.Run
	assert.Equal(t, []string{"B", "C"}, run.Shortlist.Symbols())
	assert.Equal(t, "us_largecap_v1", run.StrategyID)
	assert.Equal(t, o.StrategyHash(), run.StrategyHash)
	_, err = uuid.Parse(run.RunID)
	assert.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.Equal(t, []contracts.Stage{
		contracts.StageCollect, contracts.StageSelect, contracts.StagePersist, contracts.StagePublish,
	}, result.CompletedStages)

	require.Len(t, store.runs, 1)
	require.Len(t, pub.runs, 1)
	assert.Same(t, run, o.Latest())
}

func TestRun_OverrideKAndRunID(t *testing.T) {
	o, err := NewOrchestrator(testStrategy(), scenarioSource(), nil)
	require.NoError(t, err)

	result, err := o.Run(context.Background(), RunConfig{RunID: "fixed", K: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "fixed", result.Run.RunID)
	assert.Equal(t, []string{"B", "C", "A"}, result.Run.Shortlist.Symbols())

	result, err = o.Run(context.Background(), RunConfig{K: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, result.Run.Shortlist.Entries)
}

func TestRun_DryRunSkipsPersist(t *testing.T) {
	store := &fakeStore{}
	o, err := NewOrchestrator(testStrategy(), scenarioSource(), nil)
	require.NoError(t, err)
	o.WithStore(store)

	result, err := o.Run(context.Background(), RunConfig{DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.Persisted)
	assert.Empty(t, store.runs)
	assert.NotNil(t, o.Latest())
}

func TestRun_CollectFailure(t *testing.T) {
	boom := errors.New("provider down")
	pub := &fakePublisher{}

	o, err := NewOrchestrator(testStrategy(), &fakeSource{err: boom}, nil)
	require.NoError(t, err)
	o.WithPublisher(pub)

	result, err := o.Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "COLLECT")
	assert.Empty(t, result.CompletedStages)
	assert.Empty(t, pub.runs)
	assert.Nil(t, o.Latest())
}

func TestRun_PersistFailure(t *testing.T) {
	boom := errors.New("db down")
	pub := &fakePublisher{}

	o, err := NewOrchestrator(testStrategy(), scenarioSource(), nil)
	require.NoError(t, err)
	o.WithStore(&fakeStore{err: boom}).WithPublisher(pub)

	result, err := o.Run(context.Background(), RunConfig{})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, result.Run)
	assert.Equal(t, []contracts.Stage{contracts.StageCollect, contracts.StageSelect}, result.CompletedStages)
	assert.Empty(t, pub.runs)
}

func TestRun_UnknownMetricIsSelectFailure(t *testing.T) {
	o, err := NewOrchestrator(testStrategy(), scenarioSource(), nil)
	require.NoError(t, err)
	// 테이블에 없는 지표 요청
	o.selector = selection.NewSelector([]string{"unknown_metric"}, nil)

	_, err = o.Run(context.Background(), RunConfig{})
	assert.ErrorIs(t, err, selection.ErrUnknownMetric)
	assert.Contains(t, err.Error(), "SELECT")
}

func TestRun_Exclusive(t *testing.T) {
	src := scenarioSource()
	src.entered = make(chan struct{}, 1)
	src.block = make(chan struct{})

	o, err := NewOrchestrator(testStrategy(), src, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), RunConfig{})
		done <- err
	}()

	// 첫 실행이 수집 단계에 들어갈 때까지 대기
	select {
	case <-src.entered:
	case <-time.After(time.Second):
		t.Fatal("first run never started")
	}

	_, err = o.Run(context.Background(), RunConfig{})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(src.block)
	assert.NoError(t, <-done)
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := NewOrchestrator(nil, scenarioSource(), nil)
	assert.Error(t, err)

	_, err = NewOrchestrator(testStrategy(), nil, nil)
	assert.Error(t, err)
}
