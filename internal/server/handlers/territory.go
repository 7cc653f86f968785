package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turnstone-io/turnstone/internal/store"
)

// TerritoryAtTurn returns every tile of a match at one turn with its
// resolved owner; unowned tiles are included with null owner fields.
func (h *Handlers) TerritoryAtTurn(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	turnStr := r.URL.Query().Get("turn")
	turn, err := strconv.Atoi(turnStr)
	if err != nil || turn < 1 {
		h.writeError(w, http.StatusBadRequest, "turn must be a positive integer", nil)
		return
	}

	cells, err := h.store.TerritoryAtTurn(r.Context(), matchID, turn)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query territory", err)
		return
	}
	if cells == nil {
		cells = []store.TerritoryCell{}
	}
	h.writeJSON(w, cells)
}

// TerritoryCounts returns per-turn tile counts per owner.
func (h *Handlers) TerritoryCounts(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	counts, err := h.store.TerritoryCounts(r.Context(), matchID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query territory counts", err)
		return
	}
	if counts == nil {
		counts = []store.TerritoryCount{}
	}
	h.writeJSON(w, counts)
}
