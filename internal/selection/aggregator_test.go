package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	scores, err := Aggregate(3,
		[]int{1, 1, 2},
		[]int{2, 2, 1},
		[]int{2, 1, 1},
	)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 4}, scores)
}

func TestAggregate_NoColumns(t *testing.T) {
	scores, err := Aggregate(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, scores)
}

func TestAggregate_LengthMismatch(t *testing.T) {
	tests := []struct {
		name    string
		columns [][]int
	}{
		{"short column", [][]int{{1, 2, 3}, {1, 2}}},
		{"long column", [][]int{{1, 2, 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(3, tt.columns...)
			assert.ErrorIs(t, err, ErrColumnLengthMismatch)
		})
	}
}
