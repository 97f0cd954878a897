package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordRun(t *testing.T) {
	r := New()

	r.RecordRun(nil, 48, 10, 3)
	r.RecordRun(errors.New("collect failed"), 0, 0, 0)
	r.RecordRun(nil, 48, 10, 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.runsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.runsTotal.WithLabelValues("error")))
	assert.Equal(t, float64(48), testutil.ToFloat64(r.universeSize))
	assert.Equal(t, float64(10), testutil.ToFloat64(r.selectedSize))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.degradedSymbols))
}

func TestRecorder_RecordFetch(t *testing.T) {
	r := New()

	r.RecordFetch("quote", nil)
	r.RecordFetch("quote", nil)
	r.RecordFetch("dividends", errors.New("timeout"))
	r.RecordCacheHit()

	assert.Equal(t, float64(2), testutil.ToFloat64(r.fetchTotal.WithLabelValues("quote", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.fetchTotal.WithLabelValues("dividends", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.cacheHits))
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveStage("collect", time.Second)
		r.RecordFetch("quote", nil)
		r.RecordCacheHit()
		r.RecordRun(nil, 1, 1, 0)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveStage("select", 20*time.Millisecond)
	r.RecordRun(nil, 3, 2, 0)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "shortlist_stage_duration_seconds")
	assert.Contains(t, string(body), `shortlist_runs_total{status="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
