package selection

import "sort"

// DenseRank ranks a column descending: the highest value gets rank 1,
// equal values share a rank and no rank number is skipped.
// Values are expected to be validated (finite, >= 0) by MetricTable.
func DenseRank(values []float64) []int {
	ranks := make([]int, len(values))
	if len(values) == 0 {
		return ranks
	}

	seen := make(map[float64]struct{}, len(values))
	distinct := make([]float64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))

	lookup := make(map[float64]int, len(distinct))
	for i, v := range distinct {
		lookup[v] = i + 1
	}

	for i, v := range values {
		ranks[i] = lookup[v]
	}

	return ranks
}
