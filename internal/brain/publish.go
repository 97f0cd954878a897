package brain

import (
	"context"
	"time"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/pkg/logger"
	"github.com/wonny/shortlist/pkg/redis"
)

// Publishers fans one run out to several publishers in order
type Publishers []Publisher

// Publish implements Publisher
func (ps Publishers) Publish(run *contracts.SelectionRun) {
	for _, p := range ps {
		if p != nil {
			p.Publish(run)
		}
	}
}

// LatestCache keeps the most recent run per strategy in Redis
type LatestCache struct {
	cache   *redis.Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *logger.Logger
}

// NewLatestCache creates a cache-backed publisher
func NewLatestCache(cache *redis.Cache, log *logger.Logger) *LatestCache {
	if log == nil {
		log = logger.Nop()
	}
	return &LatestCache{
		cache:   cache,
		ttl:     redis.TTLDaily,
		timeout: 2 * time.Second,
		logger:  log.Module("brain"),
	}
}

// Publish implements Publisher. Cache errors are logged, never returned.
func (l *LatestCache) Publish(run *contracts.SelectionRun) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if err := l.cache.Set(ctx, redis.LatestShortlistKey(run.StrategyID), run, l.ttl); err != nil {
		l.logger.Run(run.RunID).WithError(err).Warn("Latest shortlist cache write failed")
	}
}

// Get returns the cached latest run of a strategy, nil on miss
func (l *LatestCache) Get(ctx context.Context, strategyID string) (*contracts.SelectionRun, error) {
	var run contracts.SelectionRun
	found, err := l.cache.Get(ctx, redis.LatestShortlistKey(strategyID), &run)
	if err != nil || !found {
		return nil, err
	}
	return &run, nil
}
