package selection

import (
	"fmt"
	"sort"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/pkg/logger"
)

// Selector turns a populated MetricTable into a Shortlist
// ⭐ SSOT: 랭킹/선정 로직은 여기서만
type Selector struct {
	metrics []string
	logger  *logger.Logger
}

// NewSelector creates a selector over an equally weighted metric list.
// A nil logger discards output.
func NewSelector(metrics []string, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Nop()
	}

	m := make([]string, len(metrics))
	copy(m, metrics)

	return &Selector{
		metrics: m,
		logger:  log.Module("selection"),
	}
}

// Metrics returns the ranking metrics in use
func (s *Selector) Metrics() []string {
	out := make([]string, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// SelectTopK is the plain entry point: default metrics, ids only
func SelectTopK(table *MetricTable, k int) ([]string, error) {
	shortlist, err := NewSelector(contracts.DefaultRankingMetrics(), nil).Select(table, k)
	if err != nil {
		return nil, err
	}
	return shortlist.Symbols(), nil
}

// Select validates and freezes the table, dense-ranks every metric,
// sums the ranks and returns the top k entities.
func (s *Selector) Select(table *MetricTable, k int) (*contracts.Shortlist, error) {
	if len(s.metrics) == 0 {
		return nil, ErrNoMetrics
	}

	n := table.Len()
	shortlist := &contracts.Shortlist{
		Requested: k,
		Universe:  n,
		Metrics:   s.Metrics(),
		Entries:   []contracts.ShortlistEntry{},
	}

	// 빈 유니버스: 지표 컬럼이 존재할 수 없으므로 검증 생략
	if n == 0 {
		table.Freeze()
		return shortlist, nil
	}

	if err := table.Complete(s.metrics); err != nil {
		return nil, err
	}
	table.Freeze()

	rankColumns := make([][]int, len(s.metrics))
	for c, name := range s.metrics {
		values, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		rankColumns[c] = DenseRank(values)
	}

	scores, err := Aggregate(n, rankColumns...)
	if err != nil {
		return nil, err
	}

	ids := table.IDs()
	order := topKIndices(scores, k)
	for pos, i := range order {
		ranks := make(map[string]int, len(s.metrics))
		for c, name := range s.metrics {
			ranks[name] = rankColumns[c][i]
		}
		shortlist.Entries = append(shortlist.Entries, contracts.ShortlistEntry{
			Position: pos + 1,
			Symbol:   ids[i],
			Score:    scores[i],
			Ranks:    ranks,
		})
	}

	fields := map[string]interface{}{
		"universe":  n,
		"requested": k,
		"selected":  len(shortlist.Entries),
		"metrics":   s.metrics,
	}
	if len(shortlist.Entries) > 0 {
		fields["top_symbol"] = shortlist.Entries[0].Symbol
		fields["top_score"] = shortlist.Entries[0].Score
	}
	s.logger.WithFields(fields).Info("Selection completed")

	return shortlist, nil
}

// TopK orders ids by ascending score, ties in canonical (input) order,
// and truncates to k. k <= 0 yields an empty slice, k > n is clamped to n.
func TopK(scores []int, ids []string, k int) ([]string, error) {
	if len(scores) != len(ids) {
		return nil, fmt.Errorf("%w: %d scores for %d ids", ErrColumnLengthMismatch, len(scores), len(ids))
	}

	order := topKIndices(scores, k)
	out := make([]string, len(order))
	for pos, i := range order {
		out[pos] = ids[i]
	}
	return out, nil
}

// topKIndices groups entity indices by score and emits groups in ascending
// score order, stopping exactly at k even inside a tie group.
func topKIndices(scores []int, k int) []int {
	n := len(scores)
	if k <= 0 || n == 0 {
		return []int{}
	}
	if k > n {
		k = n
	}

	groups := make(map[int][]int)
	keys := make([]int, 0)
	for i, score := range scores {
		if _, ok := groups[score]; !ok {
			keys = append(keys, score)
		}
		// indices are appended in canonical order
		groups[score] = append(groups[score], i)
	}
	sort.Ints(keys)

	out := make([]int, 0, k)
	for _, score := range keys {
		for _, i := range groups[score] {
			out = append(out, i)
			if len(out) == k {
				return out
			}
		}
	}

	return out
}
