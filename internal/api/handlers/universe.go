package handlers

import (
	"net/http"

	"github.com/wonny/shortlist/internal/strategyconfig"
)

// UniverseHandler serves the configured universe
type UniverseHandler struct {
	strategy *strategyconfig.Config
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(strategy *strategyconfig.Config) *UniverseHandler {
	return &UniverseHandler{strategy: strategy}
}

// UniverseResponse lists symbols in canonical (tie-break) order
type UniverseResponse struct {
	StrategyID string   `json:"strategy_id"`
	Symbols    []string `json:"symbols"`
	Count      int      `json:"count"`
	Metrics    []string `json:"metrics"`
	TopK       int      `json:"top_k"`
}

// Get returns the universe
// GET /api/universe
func (h *UniverseHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UniverseResponse{
		StrategyID: h.strategy.Meta.StrategyID,
		Symbols:    h.strategy.Universe.Symbols,
		Count:      len(h.strategy.Universe.Symbols),
		Metrics:    h.strategy.Selection.Metrics,
		TopK:       h.strategy.Selection.TopK,
	})
}
