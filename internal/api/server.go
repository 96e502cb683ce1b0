package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rcalder/inkbind/internal/config"
	"github.com/rcalder/inkbind/internal/epub"
	"github.com/rcalder/inkbind/internal/pipeline"
)

// Server is the HTTP API server for inkbind.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	buildStats   *epub.BuildStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		buildStats:   epub.NewBuildStats(time.Hour),
		log:          log,
		cfg:          cfg,
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
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleSessionStatus)

		r.Get("/api/sessions/{sessionID}/toc", s.handleGetTOC)
		r.Post("/api/sessions/{sessionID}/reparse", s.handleReparse)
		r.Post("/api/sessions/{sessionID}/classify", s.handleClassifyLine)

		r.Post("/api/sessions/{sessionID}/items", s.handleInsertItem)
		r.Delete("/api/sessions/{sessionID}/items/{index}", s.handleDeleteItem)
		r.Patch("/api/sessions/{sessionID}/items/{index}", s.handleRenameItem)
		r.Post("/api/sessions/{sessionID}/items/{index}/swap", s.handleSwapItem)

		r.Post("/api/sessions/{sessionID}/export", s.handleExport)
		r.Get("/api/stats/export", s.handleExportStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
