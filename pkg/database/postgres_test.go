package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortlist/pkg/config"
)

func integrationDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func TestHealthCheck(t *testing.T) {
	db := integrationDB(t)

	status, err := db.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.MaxConns, int32(0))
}

func TestHealthCheck_SchemaReadyAfterMigrate(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))
	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.SchemaReady)
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := integrationDB(t)

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	db := integrationDB(t)

	assert.NotPanics(t, func() {
		db.Close()
		db.Close()
		var nilDB *DB
		nilDB.Close()
	})
}
