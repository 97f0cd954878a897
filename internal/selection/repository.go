package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/shortlist/internal/contracts"
)

// ErrRunNotFound is returned when no run matches the lookup
var ErrRunNotFound = errors.New("selection run not found")

// Repository handles selection run history
// ⭐ SSOT: 선정 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a run and its entries in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *contracts.SelectionRun) error {
	var reportJSON []byte
	if run.Report != nil {
		var err error
		reportJSON, err = json.Marshal(run.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO selection.runs (
			run_id, strategy_id, strategy_hash, requested, universe,
			metrics, report, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		run.RunID, run.StrategyID, run.StrategyHash,
		run.Shortlist.Requested, run.Shortlist.Universe,
		run.Shortlist.Metrics, reportJSON, run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range run.Shortlist.Entries {
		ranksJSON, err := json.Marshal(e.Ranks)
		if err != nil {
			return fmt.Errorf("failed to marshal ranks: %w", err)
		}
		batch.Queue(`
			INSERT INTO selection.run_entries (run_id, position, symbol, score, ranks)
			VALUES ($1, $2, $3, $4, $5)
		`, run.RunID, e.Position, e.Symbol, e.Score, ranksJSON)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun loads one run by id
func (r *Repository) GetRun(ctx context.Context, runID string) (*contracts.SelectionRun, error) {
	return r.getRun(ctx, `WHERE run_id = $1`, runID)
}

// LatestRun loads the most recent run
func (r *Repository) LatestRun(ctx context.Context) (*contracts.SelectionRun, error) {
	return r.getRun(ctx, `ORDER BY created_at DESC LIMIT 1`)
}

// ListRuns returns the most recent runs, newest first, entries included
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*contracts.SelectionRun, error) {
	rows, err := r.pool.Query(ctx, runColumns+`
		FROM selection.runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	runs := make([]*contracts.SelectionRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	for _, run := range runs {
		if err := r.loadEntries(ctx, run); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// PruneRuns deletes runs created before the cutoff; entries cascade
func (r *Repository) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM selection.runs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

const runColumns = `
	SELECT run_id::text, strategy_id, strategy_hash, requested, universe,
		metrics, report, duration_ms, created_at
`

func (r *Repository) getRun(ctx context.Context, clause string, args ...interface{}) (*contracts.SelectionRun, error) {
	run, err := scanRun(r.pool.QueryRow(ctx, runColumns+` FROM selection.runs `+clause, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadEntries(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func scanRun(row pgx.Row) (*contracts.SelectionRun, error) {
	run := &contracts.SelectionRun{Shortlist: &contracts.Shortlist{}}
	var reportJSON []byte
	var durationMs int64

	err := row.Scan(
		&run.RunID, &run.StrategyID, &run.StrategyHash,
		&run.Shortlist.Requested, &run.Shortlist.Universe,
		&run.Shortlist.Metrics, &reportJSON, &durationMs, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond
	if len(reportJSON) > 0 {
		run.Report = &contracts.CollectionReport{}
		if err := json.Unmarshal(reportJSON, run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
	}

	return run, nil
}

func (r *Repository) loadEntries(ctx context.Context, run *contracts.SelectionRun) error {
	rows, err := r.pool.Query(ctx, `
		SELECT position, symbol, score, ranks
		FROM selection.run_entries
		WHERE run_id = $1
		ORDER BY position ASC
	`, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	run.Shortlist.Entries = make([]contracts.ShortlistEntry, 0)
	for rows.Next() {
		var e contracts.ShortlistEntry
		var ranksJSON []byte
		if err := rows.Scan(&e.Position, &e.Symbol, &e.Score, &ranksJSON); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal(ranksJSON, &e.Ranks); err != nil {
			return fmt.Errorf("failed to unmarshal ranks: %w", err)
		}
		run.Shortlist.Entries = append(run.Shortlist.Entries, e)
	}

	return rows.Err()
}
