// Package web provides the HTTP read surface over the snapshot store:
// health, named snapshot downloads for downstream consumers, and a
// manual run trigger for operators.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/malimedia/auctionpipe/internal/config"
	"github.com/malimedia/auctionpipe/internal/pipeline"
	"github.com/malimedia/auctionpipe/internal/store"
	"github.com/malimedia/auctionpipe/internal/web/middleware"
)

// Server is the HTTP server over the snapshot store.
type Server struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	history  *pipeline.History
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. The pipeline may be nil, in
// which case the trigger endpoint responds 503.
func NewServer(s store.Store, p *pipeline.Pipeline, cfg *config.Config) *Server {
	srv := &Server{
		store:    s,
		pipeline: p,
		history:  pipeline.NewHistory(s),
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(60 * time.Second))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/snapshots/{name}", s.handleSnapshot)
	s.router.Get("/runs/history", s.handleRunHistory)
	s.router.With(middleware.APIKeyAuth(s.cfg.Server.APIKeys)).Post("/runs", s.handleTriggerRun)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
