// Package server implements the turnstone HTTP API server: the read-only
// query surface the dashboard front end consumes.
package server

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/turnstone-io/turnstone/internal/server/handlers"
)

// Server is the turnstone HTTP API server.
type Server struct {
	store  handlers.Store
	logger *slog.Logger
	router chi.Router
	addr   string
	apiKey string
	srv    *http.Server
}

// New creates a new HTTP server.
func New(addr, apiKey string, st handlers.Store, logger *slog.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		addr:   addr,
		apiKey: apiKey,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(APIKeyMiddleware(apiKey))

	s.router = r
	s.registerRoutes(r)
	return s
}

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.store, s.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/matches", h.ListMatches)
		r.Get("/matches/{matchID}", h.GetMatch)
		r.Get("/matches/{matchID}/players", h.MatchPlayers)
		r.Get("/matches/{matchID}/turns", h.TurnRange)
		r.Get("/matches/{matchID}/territory", h.TerritoryAtTurn)
		r.Get("/matches/{matchID}/territory/counts", h.TerritoryCounts)
		r.Get("/matches/{matchID}/progression", h.Progression)
		r.Get("/matches/{matchID}/events", h.EventTimeline)
	})

	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("turnstone server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
