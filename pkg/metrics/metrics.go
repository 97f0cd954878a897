// Package metrics exposes Prometheus instrumentation for selection runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several instances can coexist in tests.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	degradedSymbols prometheus.Gauge
	universeSize    prometheus.Gauge
	selectedSize    prometheus.Gauge
	cacheHits       prometheus.Counter
}

// New creates a Recorder and registers every collector on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortlist_runs_total",
				Help: "Selection runs by outcome.",
			},
			[]string{"status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortlist_stage_duration_seconds",
				Help:    "Duration of each pipeline stage.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortlist_provider_fetch_total",
				Help: "Provider fetches by metric source and outcome.",
			},
			[]string{"source", "status"},
		),
		degradedSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlist_degraded_symbols",
			Help: "Symbols with at least one zero-filled metric in the last run.",
		}),
		universeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlist_universe_size",
			Help: "Entities ranked in the last run.",
		}),
		selectedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlist_selected_size",
			Help: "Entities emitted by the last run.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortlist_snapshot_cache_hits_total",
			Help: "Snapshots served from cache instead of the provider.",
		}),
	}

	r.registry.MustRegister(
		r.runsTotal,
		r.stageDuration,
		r.fetchTotal,
		r.degradedSymbols,
		r.universeSize,
		r.selectedSize,
		r.cacheHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveStage records how long a pipeline stage took
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFetch counts one provider call
func (r *Recorder) RecordFetch(source string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetchTotal.WithLabelValues(source, status).Inc()
}

// RecordCacheHit counts a snapshot served from cache
func (r *Recorder) RecordCacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

// RecordRun records the outcome of a finished run
func (r *Recorder) RecordRun(err error, universe, selected, degraded int) {
	if r == nil {
		return
	}
	if err != nil {
		r.runsTotal.WithLabelValues("error").Inc()
		return
	}
	r.runsTotal.WithLabelValues("success").Inc()
	r.universeSize.Set(float64(universe))
	r.selectedSize.Set(float64(selected))
	r.degradedSymbols.Set(float64(degraded))
}
