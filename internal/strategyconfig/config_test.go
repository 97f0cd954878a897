package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortlist/internal/universe"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/candidates_v1.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	assert.Equal(t, "us_largecap_v1", cfg.Meta.StrategyID)
	assert.Equal(t, universe.DefaultSymbols(), cfg.Universe.Symbols)
	assert.Equal(t, 10*time.Minute, cfg.Collection.CacheTTL)

	// 파일 설정 == 기본 설정 → 동일 해시
	fileHash, err := Hash(cfg)
	require.NoError(t, err)
	defaultHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, defaultHash, fileHash)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Len(t, cfg.Universe.Symbols, 48)
	assert.Equal(t, 10, cfg.Selection.TopK)
	assert.False(t, cfg.Collection.Abort())
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Selection.TopK = 5
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	// 종목 순서도 해시에 반영
	reordered := Default()
	reordered.Universe.Symbols[0], reordered.Universe.Symbols[1] = reordered.Universe.Symbols[1], reordered.Universe.Symbols[0]
	h4, err := Hash(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
meta:
  strategy_id: mini
universe:
  symbols: [AAPL, MSFT]
selection:
  top_k: 1
  metrics: [market_cap]
`))
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Meta.Timezone)
	assert.Equal(t, 4, cfg.Collection.Workers)
	assert.Equal(t, 365, cfg.Collection.DividendLookbackDays)
	assert.Equal(t, 7, cfg.Collection.VolumeSessions)
	assert.Equal(t, OnFailureZero, cfg.Collection.OnFailure)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  strategy_id: mini
  stratgy: typo
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stratgy")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Base" }, "meta.timezone"},
		{"empty universe", func(c *Config) { c.Universe.Symbols = nil }, "universe.symbols"},
		{"duplicate symbol", func(c *Config) { c.Universe.Symbols = []string{"AAPL", "AAPL"} }, "universe.symbols"},
		{"negative top k", func(c *Config) { c.Selection.TopK = -1 }, "selection.top_k"},
		{"no metrics", func(c *Config) { c.Selection.Metrics = nil }, "selection.metrics"},
		{"unknown metric", func(c *Config) { c.Selection.Metrics = []string{"pe_ratio"} }, "selection.metrics"},
		{"duplicate metric", func(c *Config) { c.Selection.Metrics = []string{"market_cap", "market_cap"} }, "selection.metrics"},
		{"zero workers", func(c *Config) { c.Collection.Workers = 0 }, "collection.workers"},
		{"too many workers", func(c *Config) { c.Collection.Workers = 100 }, "collection.workers"},
		{"zero rps", func(c *Config) { c.Collection.RequestsPerSecond = 0 }, "collection.requests_per_second"},
		{"bad policy", func(c *Config) { c.Collection.OnFailure = "retry" }, "collection.on_failure"},
		{"negative ttl", func(c *Config) { c.Collection.CacheTTL = -time.Second }, "collection.cache_ttl"},
		{"enabled without cron", func(c *Config) { c.Schedule.Enabled = true; c.Schedule.Cron = "" }, "schedule.cron"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day" }, "schedule.cron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "us_largecap_v1", cfg.Meta.StrategyID)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta: ["), 0o644))

	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}
