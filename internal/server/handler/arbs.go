package handler

import (
	"log/slog"
	"net/http"

	"github.com/arborwatch/xvenue-arb/internal/domain"
)

// OpportunitySource is the subset of the arbitrage engine this handler
// needs: its latest published snapshot.
type OpportunitySource interface {
	Snapshot() domain.Snapshot
}

// ArbsHandler serves the current arbitrage snapshot.
type ArbsHandler struct {
	engine OpportunitySource
	logger *slog.Logger
}

// NewArbsHandler creates an ArbsHandler backed by engine.
func NewArbsHandler(engine OpportunitySource, logger *slog.Logger) *ArbsHandler {
	return &ArbsHandler{engine: engine, logger: logger}
}

// ListOpportunities returns the engine's current opportunities as a bare
// JSON array, sorted descending by ROI on turnover and already capped to
// the engine's fixed maximum of 1000 entries.
// GET /arbs
func (h *ArbsHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.Snapshot()
	if snapshot.Opportunities == nil {
		snapshot.Opportunities = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, snapshot.Opportunities)
}
