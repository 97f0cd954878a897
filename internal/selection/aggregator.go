package selection

import "fmt"

// Aggregate sums rank columns per entity with equal weight.
// Lower is better. Every column must have exactly n entries.
func Aggregate(n int, columns ...[]int) ([]int, error) {
	scores := make([]int, n)

	for c, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %d has %d ranks, want %d", ErrColumnLengthMismatch, c, len(col), n)
		}
		for i, rank := range col {
			scores[i] += rank
		}
	}

	return scores, nil
}
