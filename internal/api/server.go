package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/agendalink/internal/config"
	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/dgallion1/agendalink/internal/resolve"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Analyzer runs the agenda pipeline over a PDF on disk.
type Analyzer interface {
	Links(ctx context.Context, path string) ([]docket.Link, error)
	Docket(ctx context.Context, path string) (*docket.DocketList, error)
}

// Server is the HTTP API server for agendalink.
type Server struct {
	router   chi.Router
	analyzer Analyzer
	stats    *resolve.Stats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(analyzer Analyzer, stats *resolve.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		analyzer: analyzer,
		stats:    stats,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/healthz", s.handleHealth)

	// Authenticated endpoints when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze-links", s.handleAnalyzeLinks)
		r.Get("/api/stats/resolver", s.handleResolverStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true}`))
}
