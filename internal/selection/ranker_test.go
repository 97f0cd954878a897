package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenseRank(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"empty", []float64{}, []int{}},
		{"single", []float64{7}, []int{1}},
		{"all equal", []float64{3, 3, 3}, []int{1, 1, 1}},
		{"all zero", []float64{0, 0}, []int{1, 1}},
		{"descending", []float64{30, 20, 10}, []int{1, 2, 3}},
		{"ascending", []float64{10, 20, 30}, []int{3, 2, 1}},
		{"ties do not skip", []float64{100, 100, 50, 10}, []int{1, 1, 2, 3}},
		{"zeros rank last", []float64{0, 5, 0, 5, 1}, []int{3, 1, 3, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DenseRank(tt.values))
		})
	}
}

func TestDenseRank_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(40)
		values := make([]float64, n)
		distinct := make(map[float64]struct{})
		for i := range values {
			values[i] = float64(rng.Intn(10)) // plenty of ties
			distinct[values[i]] = struct{}{}
		}

		ranks := DenseRank(values)
		assert.Len(t, ranks, n)

		// ranks are exactly {1..d}
		seen := make(map[int]struct{})
		for _, r := range ranks {
			seen[r] = struct{}{}
		}
		assert.Len(t, seen, len(distinct))
		for r := 1; r <= len(distinct); r++ {
			assert.Contains(t, seen, r)
		}

		// higher value never ranks worse, equal values share a rank
		for i := range values {
			for j := range values {
				switch {
				case values[i] > values[j]:
					assert.Less(t, ranks[i], ranks[j])
				case values[i] == values[j]:
					assert.Equal(t, ranks[i], ranks[j])
				}
			}
		}
	}
}
