package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/scheduler"
)

type fakeRunner struct {
	calls int
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &brain.RunResult{Run: &contracts.SelectionRun{
		RunID:     "r1",
		Shortlist: &contracts.Shortlist{Entries: []contracts.ShortlistEntry{{Position: 1, Symbol: "AAPL"}}},
	}}, nil
}

func TestSelectionJob(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantErr  bool
		wantSkip bool
	}{
		{"success", nil, false, false},
		{"in progress is skipped", brain.ErrRunInProgress, true, true},
		{"failure", errors.New("collect failed"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{err: tt.err}
			job := NewSelectionJob(runner, "0 30 16 * * 1-5", nil)

			assert.Equal(t, "shortlist_selection", job.Name())
			assert.Equal(t, "0 30 16 * * 1-5", job.Schedule())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantSkip, errors.Is(err, scheduler.ErrSkipped))
			assert.Equal(t, 1, runner.calls)
		})
	}
}

type fakePruner struct {
	before time.Time
	count  int64
	err    error
}

func (f *fakePruner) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.count, f.err
}

func TestHistoryCleanupJob(t *testing.T) {
	now := time.Date(2025, 3, 14, 3, 0, 0, 0, time.UTC)
	pruner := &fakePruner{count: 4}

	job := NewHistoryCleanupJob(pruner, 30*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -30), pruner.before)

	pruner.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}
