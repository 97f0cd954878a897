// Package collector gathers per-symbol metrics from the market data provider
// and assembles them into a selection table.
package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/external/yahoo"
	"github.com/wonny/shortlist/internal/selection"
	"github.com/wonny/shortlist/internal/universe"
	"github.com/wonny/shortlist/pkg/logger"
	"github.com/wonny/shortlist/pkg/metrics"
	"github.com/wonny/shortlist/pkg/redis"
)

var (
	// ErrFetchFailed wraps provider failures under AbortOnFailure
	ErrFetchFailed = errors.New("metric fetch failed")
	// ErrInvalidValue 제공자가 nil, 음수, NaN, Inf 값을 반환
	ErrInvalidValue = errors.New("invalid provider value")
)

// Policy decides what a provider failure does to the batch
type Policy int

const (
	// DegradeToZero records the failed field as 0 and keeps going
	DegradeToZero Policy = iota
	// AbortOnFailure fails the whole collection on the first error
	AbortOnFailure
)

func (p Policy) String() string {
	switch p {
	case AbortOnFailure:
		return "abort"
	default:
		return "zero"
	}
}

// ParsePolicy maps the strategy file value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "zero":
		return DegradeToZero, nil
	case "abort":
		return AbortOnFailure, nil
	default:
		return DegradeToZero, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Options tunes one collector
type Options struct {
	Workers              int
	RequestsPerSecond    float64
	DividendLookbackDays int
	VolumeSessions       int
	CacheTTL             time.Duration
	Policy               Policy
	Location             *time.Location // 배당 기준일 계산용 (기본: America/New_York)
}

// DefaultOptions matches the built-in strategy
func DefaultOptions() Options {
	return Options{
		Workers:              4,
		RequestsPerSecond:    10,
		DividendLookbackDays: 365,
		VolumeSessions:       7,
		CacheTTL:             redis.TTLMedium,
		Policy:               DegradeToZero,
	}
}

// Collector fetches metrics for a universe
// ⭐ SSOT: 제공자 호출 → 지표 테이블 변환은 여기서만
type Collector struct {
	provider contracts.MetricsProvider
	opts     Options
	limiter  *rate.Limiter
	cache    *redis.Cache
	recorder *metrics.Recorder
	logger   *logger.Logger
	now      func() time.Time
}

// New creates a collector. Zero-valued options fall back to DefaultOptions.
func New(provider contracts.MetricsProvider, opts Options, log *logger.Logger) *Collector {
	d := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = d.Workers
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = d.RequestsPerSecond
	}
	if opts.DividendLookbackDays <= 0 {
		opts.DividendLookbackDays = d.DividendLookbackDays
	}
	if opts.VolumeSessions <= 0 {
		opts.VolumeSessions = d.VolumeSessions
	}
	if opts.Location == nil {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		opts.Location = loc
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Collector{
		provider: provider,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:   log.Module("collector"),
		now:      time.Now,
	}
}

// WithCache enables snapshot caching
func (c *Collector) WithCache(cache *redis.Cache) *Collector {
	c.cache = cache
	return c
}

// WithMetrics enables Prometheus fetch counters
func (c *Collector) WithMetrics(rec *metrics.Recorder) *Collector {
	c.recorder = rec
	return c
}

// Options returns the effective options
func (c *Collector) Options() Options {
	return c.opts
}

// Collect fetches every symbol concurrently. Snapshots come back in input order.
func (c *Collector) Collect(ctx context.Context, symbols []string) ([]contracts.EntitySnapshot, *contracts.CollectionReport, error) {
	start := c.now()
	report := &contracts.CollectionReport{
		Total:    len(symbols),
		Degraded: make(map[string][]string),
	}

	if len(symbols) == 0 {
		return []contracts.EntitySnapshot{}, report, nil
	}
	if err := universe.Validate(symbols); err != nil {
		return nil, nil, err
	}

	snapshots := make([]contracts.EntitySnapshot, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, symbol := range symbols {
		g.Go(func() error {
			snap, hit, err := c.collectOne(gctx, symbol)
			if err != nil {
				return err
			}
			// 인덱스별 슬롯에 기록 → 순서 보장
			snapshots[i] = *snap

			mu.Lock()
			if hit {
				report.CacheHits++
			}
			if len(snap.Degraded) > 0 {
				report.Degraded[symbol] = snap.Degraded
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report.Duration = time.Since(start)

	c.logger.WithFields(map[string]interface{}{
		"total":      report.Total,
		"cache_hits": report.CacheHits,
		"degraded":   report.DegradedCount(),
		"duration":   report.Duration,
		"policy":     c.opts.Policy.String(),
	}).Info("Collection completed")

	return snapshots, report, nil
}

// CollectTable runs Collect and builds the metric table
func (c *Collector) CollectTable(ctx context.Context, symbols []string) (*selection.MetricTable, *contracts.CollectionReport, error) {
	snapshots, report, err := c.Collect(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}

	table, err := BuildTable(snapshots)
	if err != nil {
		return nil, nil, err
	}
	return table, report, nil
}

// collectOne serves one symbol from cache or the provider
func (c *Collector) collectOne(ctx context.Context, symbol string) (*contracts.EntitySnapshot, bool, error) {
	key := redis.SnapshotKey(symbol, c.now().In(c.opts.Location))

	if c.cache != nil {
		var cached contracts.EntitySnapshot
		found, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithField("symbol", symbol).WithError(err).Warn("Snapshot cache read failed")
		}
		if found {
			c.recorder.RecordCacheHit()
			return &cached, true, nil
		}
	}

	snap, err := c.fetch(ctx, symbol)
	if err != nil {
		return nil, false, err
	}

	// 성공한 스냅샷만 캐시 (degraded 값은 다음 실행에서 재시도)
	if c.cache != nil && len(snap.Degraded) == 0 && c.opts.CacheTTL > 0 {
		if err := c.cache.Set(ctx, key, snap, c.opts.CacheTTL); err != nil {
			c.logger.WithField("symbol", symbol).WithError(err).Warn("Snapshot cache write failed")
		}
	}

	return snap, false, nil
}

// fetch calls the provider for the three sources and derives the metrics.
// Invalid provider values (nil, negative, NaN, Inf) are treated like errors.
func (c *Collector) fetch(ctx context.Context, symbol string) (*contracts.EntitySnapshot, error) {
	now := c.now()
	snap := &contracts.EntitySnapshot{Symbol: symbol, FetchedAt: now}

	// degrade는 필드 하나를 정책에 맡기고, 중단이면 에러 반환
	degrade := func(source, field string, err error) error {
		if abortErr := c.handle(ctx, symbol, source, err); abortErr != nil {
			return abortErr
		}
		snap.Degraded = append(snap.Degraded, field)
		return nil
	}

	// 시가총액 + 발행주식수
	quote, err := call(ctx, c, "quote", func() (*contracts.Quote, error) {
		return c.provider.FetchQuote(ctx, symbol)
	})
	if err == nil && quote == nil {
		err = fmt.Errorf("%w: empty quote", ErrInvalidValue)
	}
	if err != nil {
		if abortErr := c.handle(ctx, symbol, "quote", err); abortErr != nil {
			return nil, abortErr
		}
		snap.Degraded = append(snap.Degraded, contracts.MetricMarketCap, contracts.MetricSharesOutstanding)
	} else {
		if err := checkValue(contracts.MetricMarketCap, quote.MarketCap); err != nil {
			if abortErr := degrade("quote", contracts.MetricMarketCap, err); abortErr != nil {
				return nil, abortErr
			}
		} else {
			snap.MarketCap = quote.MarketCap
		}
		if err := checkValue(contracts.MetricSharesOutstanding, quote.SharesOutstanding); err != nil {
			if abortErr := degrade("quote", contracts.MetricSharesOutstanding, err); abortErr != nil {
				return nil, abortErr
			}
		} else {
			snap.SharesOutstanding = quote.SharesOutstanding
		}
	}

	// 최근 N일 배당 × 발행주식수
	since := now.In(c.opts.Location).AddDate(0, 0, -c.opts.DividendLookbackDays)
	divs, err := call(ctx, c, "dividends", func() ([]contracts.Dividend, error) {
		return c.provider.FetchDividends(ctx, symbol, since)
	})
	var payout float64
	if err == nil {
		payout = DividendPayout(divs, snap.SharesOutstanding)
		err = checkValue(contracts.MetricDividendPayout, payout)
	}
	if err != nil {
		if abortErr := degrade("dividends", contracts.MetricDividendPayout, err); abortErr != nil {
			return nil, abortErr
		}
	} else {
		snap.DividendPayout = payout
	}

	// 최근 N 세션 거래량
	volumes, err := call(ctx, c, "volume", func() ([]int64, error) {
		return c.provider.FetchVolumes(ctx, symbol)
	})
	if err == nil {
		err = checkVolumes(volumes)
	}
	if err != nil {
		if abortErr := degrade("volume", contracts.MetricVolume7D, err); abortErr != nil {
			return nil, abortErr
		}
	} else {
		snap.Volume7D = float64(yahoo.SumRecentVolume(volumes, c.opts.VolumeSessions))
	}

	return snap, nil
}

// checkValue rejects values the metric table would refuse
func checkValue(field string, v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrInvalidValue, field, v)
	}
	return nil
}

func checkVolumes(volumes []int64) error {
	for _, v := range volumes {
		if v < 0 {
			return fmt.Errorf("%w: %s session = %d", ErrInvalidValue, contracts.MetricVolume7D, v)
		}
	}
	return nil
}

// call paces, executes and counts one provider request
func call[T any](ctx context.Context, c *Collector, source string, fn func() (T, error)) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, err
	}
	v, err := fn()
	c.recorder.RecordFetch(source, err)
	return v, err
}

// handle applies the failure policy. A non-nil return aborts the batch.
func (c *Collector) handle(ctx context.Context, symbol, source string, err error) error {
	if err == nil {
		return nil
	}
	// 취소는 정책과 무관하게 중단
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if c.opts.Policy == AbortOnFailure {
		return fmt.Errorf("%w: %s %s: %v", ErrFetchFailed, symbol, source, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"source": source,
	}).WithError(err).Warn("Fetch failed, degrading to zero")
	return nil
}

// DividendPayout is Σ(per-share dividends) × shares, 0 without dividends or shares
func DividendPayout(divs []contracts.Dividend, shares float64) float64 {
	if len(divs) == 0 || shares <= 0 {
		return 0
	}
	return yahoo.SumDividends(divs) * shares
}
