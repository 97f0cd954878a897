package contracts

import (
	"context"
	"time"
)

// Metric column names shared by the collector and the selection core
// ⭐ SSOT: 지표 이름은 여기서만 정의
const (
	MetricMarketCap         = "market_cap"
	MetricSharesOutstanding = "shares_outstanding"
	MetricDividendPayout    = "dividend_payout_365d"
	MetricVolume7D          = "volume_7d"
)

// RankableMetrics lists metrics that may be used as ranking signals.
// shares_outstanding only feeds the dividend payout and is not ranked by default.
var RankableMetrics = []string{
	MetricMarketCap,
	MetricSharesOutstanding,
	MetricDividendPayout,
	MetricVolume7D,
}

// DefaultRankingMetrics are the three equally weighted signals
func DefaultRankingMetrics() []string {
	return []string{MetricMarketCap, MetricDividendPayout, MetricVolume7D}
}

// IsRankableMetric reports whether name is a known metric
func IsRankableMetric(name string) bool {
	for _, m := range RankableMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// Quote holds the point-in-time fields of one instrument
type Quote struct {
	Symbol            string  `json:"symbol"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// Dividend is one cash dividend event (amount per share)
type Dividend struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// MetricsProvider is the market data collaborator
// Implementations perform I/O; failures are handled by the collector's degrade policy.
type MetricsProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
	FetchDividends(ctx context.Context, symbol string, since time.Time) ([]Dividend, error)
	FetchVolumes(ctx context.Context, symbol string) ([]int64, error)
}

// EntitySnapshot is the fully derived metric set for one symbol
type EntitySnapshot struct {
	Symbol            string    `json:"symbol"`
	MarketCap         float64   `json:"market_cap"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	DividendPayout    float64   `json:"dividend_payout_365d"`
	Volume7D          float64   `json:"volume_7d"`
	FetchedAt         time.Time `json:"fetched_at"`

	// Degraded lists fields that fell back to 0 after a provider failure
	Degraded []string `json:"degraded,omitempty"`
}

// Values returns the snapshot as metric name → value
func (e *EntitySnapshot) Values() map[string]float64 {
	return map[string]float64{
		MetricMarketCap:         e.MarketCap,
		MetricSharesOutstanding: e.SharesOutstanding,
		MetricDividendPayout:    e.DividendPayout,
		MetricVolume7D:          e.Volume7D,
	}
}

// CollectionReport summarizes one collection pass
type CollectionReport struct {
	Total     int                 `json:"total"`
	CacheHits int                 `json:"cache_hits"`
	Degraded  map[string][]string `json:"degraded"` // symbol → failed fields
	Duration  time.Duration       `json:"duration"`
}

// DegradedCount returns the number of symbols with at least one zeroed field
func (r *CollectionReport) DegradedCount() int {
	return len(r.Degraded)
}
