package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turnstone-io/turnstone/internal/store"
	"github.com/turnstone-io/turnstone/pkg/types"
)

// Progression returns each player's per-turn economic standing in
// chronological order.
func (h *Handlers) Progression(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	points, err := h.store.ProgressionSeries(r.Context(), matchID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query progression", err)
		return
	}
	if points == nil {
		points = []store.ProgressionPoint{}
	}
	h.writeJSON(w, points)
}

// EventTimeline returns a match's events in chronological order, with
// optional source and kind filters.
func (h *Handlers) EventTimeline(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	source := r.URL.Query().Get("source")
	switch types.EventSource(source) {
	case "", types.SourceMemory, types.SourceLog:
	default:
		h.writeError(w, http.StatusBadRequest, "source must be memory or log", nil)
		return
	}
	kind := r.URL.Query().Get("kind")

	events, err := h.store.EventTimeline(r.Context(), matchID, source, kind)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query events", err)
		return
	}
	if events == nil {
		events = []store.TimelineEvent{}
	}
	h.writeJSON(w, events)
}
