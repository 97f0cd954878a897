package database

import (
	"context"
	"fmt"
)

// schema for selection run history
// selection.runs 1 : N selection.run_entries (position 순서 = shortlist 순서)
var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS selection`,
	`CREATE TABLE IF NOT EXISTS selection.runs (
		run_id        UUID PRIMARY KEY,
		strategy_id   TEXT        NOT NULL,
		strategy_hash TEXT        NOT NULL,
		requested     INTEGER     NOT NULL,
		universe      INTEGER     NOT NULL,
		metrics       TEXT[]      NOT NULL,
		report        JSONB,
		duration_ms   BIGINT      NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at_idx ON selection.runs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS selection.run_entries (
		run_id   UUID    NOT NULL REFERENCES selection.runs (run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		symbol   TEXT    NOT NULL,
		score    INTEGER NOT NULL,
		ranks    JSONB   NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// Migrate creates the run history schema. Safe to call repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
