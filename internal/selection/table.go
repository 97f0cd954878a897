package selection

import (
	"fmt"
	"math"
)

// MetricTable holds per-entity metric values as aligned columns.
// Entity insertion order is the canonical order and is used as the final tie-break.
// ⭐ SSOT: 랭킹 입력 데이터는 이 테이블로만 전달
type MetricTable struct {
	ids     []string
	index   map[string]int
	columns map[string][]float64
	written map[string][]bool // explicit writes, for completeness checks
	metrics []string          // metric names in first-set order
	frozen  bool
}

// NewMetricTable creates an empty table
func NewMetricTable() *MetricTable {
	return &MetricTable{
		index:   make(map[string]int),
		columns: make(map[string][]float64),
		written: make(map[string][]bool),
	}
}

// AddEntity appends an entity with every known metric defaulted to 0
func (t *MetricTable) AddEntity(id string) error {
	if t.frozen {
		return ErrTableFrozen
	}
	if _, exists := t.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	t.index[id] = len(t.ids)
	t.ids = append(t.ids, id)

	for _, name := range t.metrics {
		t.columns[name] = append(t.columns[name], 0)
		t.written[name] = append(t.written[name], false)
	}

	return nil
}

// SetMetric writes one value. Values must be finite and >= 0.
func (t *MetricTable) SetMetric(id, name string, value float64) error {
	if t.frozen {
		return ErrTableFrozen
	}

	i, exists := t.index[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s.%s = %v", ErrInvalidValue, id, name, value)
	}

	if _, known := t.columns[name]; !known {
		t.columns[name] = make([]float64, len(t.ids))
		t.written[name] = make([]bool, len(t.ids))
		t.metrics = append(t.metrics, name)
	}

	t.columns[name][i] = value
	t.written[name][i] = true
	return nil
}

// Column returns a copy of one metric column in canonical order
func (t *MetricTable) Column(name string) ([]float64, error) {
	col, known := t.columns[name]
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}

	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Value returns a single cell
func (t *MetricTable) Value(id, name string) (float64, error) {
	i, exists := t.index[id]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	col, known := t.columns[name]
	if !known {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return col[i], nil
}

// Complete verifies every entity had each metric explicitly written
func (t *MetricTable) Complete(metrics []string) error {
	for _, name := range metrics {
		written, known := t.written[name]
		if !known {
			return fmt.Errorf("%w: %s", ErrUnknownMetric, name)
		}
		for i, ok := range written {
			if !ok {
				return fmt.Errorf("%w: %s has no %s", ErrIncompleteTable, t.ids[i], name)
			}
		}
	}
	return nil
}

// IDs returns entity ids in canonical order
func (t *MetricTable) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Metrics returns metric names in first-set order
func (t *MetricTable) Metrics() []string {
	out := make([]string, len(t.metrics))
	copy(out, t.metrics)
	return out
}

// Len returns the entity count
func (t *MetricTable) Len() int {
	return len(t.ids)
}

// Freeze makes the table read-only. Idempotent.
func (t *MetricTable) Freeze() {
	t.frozen = true
}

// Frozen reports whether the table is read-only
func (t *MetricTable) Frozen() bool {
	return t.frozen
}
