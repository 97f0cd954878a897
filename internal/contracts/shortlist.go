package contracts

import "time"

// ShortlistEntry is one selected instrument with its rank breakdown
type ShortlistEntry struct {
	Position int            `json:"position"` // 1-based position in the shortlist
	Symbol   string         `json:"symbol"`
	Score    int            `json:"score"` // aggregate rank score, lower is better
	Ranks    map[string]int `json:"ranks"` // metric → dense rank
}

// Shortlist is the ordered output of one selection
// ⭐ SSOT: Selection → Persist/Publish 결과 전달
type Shortlist struct {
	Requested int              `json:"requested"` // K as requested
	Universe  int              `json:"universe"`  // entity count in the table
	Metrics   []string         `json:"metrics"`
	Entries   []ShortlistEntry `json:"entries"`
}

// Symbols returns the shortlisted symbols in order
func (s *Shortlist) Symbols() []string {
	symbols := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		symbols[i] = e.Symbol
	}
	return symbols
}

// Len returns the number of selected instruments
func (s *Shortlist) Len() int {
	return len(s.Entries)
}

// SelectionRun is a completed, auditable selection
type SelectionRun struct {
	RunID        string            `json:"run_id"`
	StrategyID   string            `json:"strategy_id"`
	StrategyHash string            `json:"strategy_hash"`
	CreatedAt    time.Time         `json:"created_at"`
	Duration     time.Duration     `json:"duration"`
	Shortlist    *Shortlist        `json:"shortlist"`
	Report       *CollectionReport `json:"report,omitempty"`
}
