package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/collector"
	"github.com/wonny/shortlist/internal/external/yahoo"
	"github.com/wonny/shortlist/internal/selection"
	"github.com/wonny/shortlist/internal/strategyconfig"
	"github.com/wonny/shortlist/pkg/config"
	"github.com/wonny/shortlist/pkg/database"
	"github.com/wonny/shortlist/pkg/httputil"
	"github.com/wonny/shortlist/pkg/logger"
	"github.com/wonny/shortlist/pkg/metrics"
	"github.com/wonny/shortlist/pkg/redis"
)

// cacheNamespace prefixes every Redis key written by the selector
const cacheNamespace = "shortlist"

// app bundles the components every selection command shares
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config

	db       *database.DB          // nil: DATABASE_URL 미설정
	repo     *selection.Repository // nil: DATABASE_URL 미설정
	redis    *redis.Client
	cache    *redis.Cache
	recorder *metrics.Recorder

	collector    *collector.Collector
	orchestrator *brain.Orchestrator
}

// loadConfig reads env configuration, honoring --config and --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// loadStrategy resolves --strategy, then STRATEGY_PATH, then the built-in default
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyPath
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	return strategy, nil
}

// collectorOptions maps the strategy's collection block onto collector options
func collectorOptions(s *strategyconfig.Config) (collector.Options, error) {
	policy, err := collector.ParsePolicy(s.Collection.OnFailure)
	if err != nil {
		return collector.Options{}, err
	}
	loc, err := time.LoadLocation(s.Meta.Timezone)
	if err != nil {
		return collector.Options{}, fmt.Errorf("strategy timezone: %w", err)
	}

	return collector.Options{
		Workers:              s.Collection.Workers,
		RequestsPerSecond:    s.Collection.RequestsPerSecond,
		DividendLookbackDays: s.Collection.DividendLookbackDays,
		VolumeSessions:       s.Collection.VolumeSessions,
		CacheTTL:             s.Collection.CacheTTL,
		Policy:               policy,
		Location:             loc,
	}, nil
}

// newApp wires config → logger → storage → provider → collector → orchestrator.
// withHistory=false skips the database even when DATABASE_URL is set.
func newApp(ctx context.Context, withHistory bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	strategy, err := loadStrategy(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, strategy: strategy}
	if cfg.MetricsEnabled {
		a.recorder = metrics.New()
	}

	// 1. Run history (optional)
	if withHistory && cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.db = db
		a.repo = selection.NewRepository(db.Pool)
		log.Info("Run history enabled")
	}

	// 2. Redis (disabled client is a no-op)
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	a.cache = redis.NewCache(rc, cacheNamespace)

	// 3. Provider
	httpClient := httputil.New(cfg, log).
		WithRateLimiter(redis.NewRateLimiter(rc, cacheNamespace), redis.ProviderRateLimit)
	provider := yahoo.NewClient(httpClient, cfg.Provider.BaseURL, cfg.Provider.HistoryURL, log)

	// 4. Collector
	opts, err := collectorOptions(strategy)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.collector = collector.New(provider, opts, log).
		WithCache(a.cache).
		WithMetrics(a.recorder)

	// 5. Orchestrator
	orch, err := brain.NewOrchestrator(strategy, a.collector, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	orch.WithMetrics(a.recorder)
	if a.repo != nil {
		orch.WithStore(a.repo)
	}
	a.orchestrator = orch

	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"universe":    len(strategy.Universe.Symbols),
		"top_k":       strategy.Selection.TopK,
		"history":     a.repo != nil,
		"redis":       rc.Enabled(),
	}).Debug("Selector wired")

	return a, nil
}

// Close releases the storage connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
