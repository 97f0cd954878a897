package collector

import (
	"fmt"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/selection"
)

// tableFields are written for every entity, degraded or not
var tableFields = []string{
	contracts.MetricMarketCap,
	contracts.MetricSharesOutstanding,
	contracts.MetricDividendPayout,
	contracts.MetricVolume7D,
}

// BuildTable creates a fresh table in snapshot order with every field set
func BuildTable(snapshots []contracts.EntitySnapshot) (*selection.MetricTable, error) {
	table := selection.NewMetricTable()

	for i := range snapshots {
		snap := &snapshots[i]
		if err := table.AddEntity(snap.Symbol); err != nil {
			return nil, fmt.Errorf("build table: %w", err)
		}

		values := snap.Values()
		for _, field := range tableFields {
			if err := table.SetMetric(snap.Symbol, field, values[field]); err != nil {
				return nil, fmt.Errorf("build table %s.%s: %w", snap.Symbol, field, err)
			}
		}
	}

	return table, nil
}
