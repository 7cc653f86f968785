// Package handlers implements the HTTP request handlers for the turnstone
// query API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/turnstone-io/turnstone/internal/store"
	"github.com/turnstone-io/turnstone/pkg/types"
)

// Store is the read-only query surface the handlers serve.
type Store interface {
	Ping(ctx context.Context) error
	ListMatches(ctx context.Context) ([]store.MatchSummary, error)
	GetMatch(ctx context.Context, matchID string) (*store.MatchSummary, error)
	MatchPlayers(ctx context.Context, matchID string) ([]types.Player, error)
	TurnRange(ctx context.Context, matchID string) (store.TurnRange, bool, error)
	TerritoryAtTurn(ctx context.Context, matchID string, turn int) ([]store.TerritoryCell, error)
	TerritoryCounts(ctx context.Context, matchID string) ([]store.TerritoryCount, error)
	ProgressionSeries(ctx context.Context, matchID string) ([]store.ProgressionPoint, error)
	EventTimeline(ctx context.Context, matchID, source, kind string) ([]store.TimelineEvent, error)
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	store  Store
	logger *slog.Logger
}

// New creates a new Handlers instance.
func New(st Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: st, logger: logger}
}

// writeError logs the internal error and returns a sanitized JSON error
// to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeJSON encodes v as the response body.
func (h *Handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
