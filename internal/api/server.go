package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/annotate"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/config"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

// Server is the HTTP API server for section counting.
type Server struct {
	router   chi.Router
	settings *settings.Service
	docs     *document.Manager
	tracker  *annotate.Tracker
	stats    *stats.ScanStats
	renderer *render.Renderer
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. A settings change
// invalidates every open document.
func NewServer(svc *settings.Service, scanStats *stats.ScanStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		settings: svc,
		docs:     document.NewManager(),
		stats:    scanStats,
		renderer: render.Default(),
		log:      log,
		cfg:      cfg,
	}
	s.tracker = annotate.NewTracker(svc, log,
		annotate.WithStats(scanStats),
		annotate.WithRenderer(s.renderer),
		annotate.WithSourceLabel("api_document"),
	)
	svc.Subscribe(func(settings.Settings) { s.docs.InvalidateAll() })

	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close drops every open document.
func (s *Server) Close() {
	for _, uri := range s.tracker.URIs() {
		s.tracker.Detach(uri)
	}
	s.docs.CloseAll()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Authenticated endpoints when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/scan", s.handleScan)
		r.Post("/api/outline", s.handleOutline)

		r.Get("/api/documents", s.handleListDocuments)
		r.Put("/api/documents/{docID}", s.handlePutDocument)
		r.Get("/api/documents/{docID}/annotations", s.handleDocumentAnnotations)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Get("/api/settings", s.handleGetSettings)
		r.Put("/api/settings/{key}", s.handlePutSetting)
		r.Post("/api/settings/{key}/toggle", s.handleToggleSetting)

		r.Get("/api/stats/scan", s.handleScanStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
