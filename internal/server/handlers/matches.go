package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turnstone-io/turnstone/internal/store"
	"github.com/turnstone-io/turnstone/pkg/types"
)

// ListMatches returns summaries of every imported match.
func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.ListMatches(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list matches", err)
		return
	}
	if matches == nil {
		matches = []store.MatchSummary{}
	}
	h.writeJSON(w, matches)
}

// GetMatch returns one match summary.
func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	match, err := h.store.GetMatch(r.Context(), matchID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get match", err)
		return
	}
	if match == nil {
		h.writeError(w, http.StatusNotFound, "match not found", nil)
		return
	}
	h.writeJSON(w, match)
}

// MatchPlayers returns a match's players in match-relative order.
func (h *Handlers) MatchPlayers(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	players, err := h.store.MatchPlayers(r.Context(), matchID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list players", err)
		return
	}
	if players == nil {
		players = []types.Player{}
	}
	h.writeJSON(w, players)
}

// TurnRange returns the min and max turn available for a match, used to
// bound the dashboard's turn scrubber.
func (h *Handlers) TurnRange(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	rng, ok, err := h.store.TurnRange(r.Context(), matchID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get turn range", err)
		return
	}
	if !ok {
		// No data for this selection is a normal outcome.
		h.writeJSON(w, map[string]any{"available": false})
		return
	}
	h.writeJSON(w, map[string]any{"available": true, "min": rng.Min, "max": rng.Max})
}
