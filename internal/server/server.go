package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/persistence"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/ratelimit"
)

// Narratives generates summaries and trail maps.
type Narratives interface {
	Summary(ctx context.Context, leaderID string, payload core.IntakePayload, total int) (core.NarrativeSummary, error)
	TrailMap(ctx context.Context, payload core.IntakePayload) (string, error)
}

// Campaigns generates and edits campaigns.
type Campaigns interface {
	Generate(ctx context.Context, leaderID string, payload core.IntakePayload, summary string) (core.Campaign, error)
	ReplaceTrait(ctx context.Context, payload core.IntakePayload, c core.Campaign, index int) (core.Campaign, error)
	ReplaceStatement(ctx context.Context, payload core.IntakePayload, c core.Campaign, traitIndex, statementIndex int) (core.Campaign, error)
}

// Dependencies are the collaborators the handlers call.
type Dependencies struct {
	Narratives Narratives
	Campaigns  Campaigns
	Repository *persistence.Repository
	Limiter    ratelimit.Store
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Dependencies
	config     config.Server
	window     time.Duration
	log        *slog.Logger
	now        func() time.Time
}

// New creates a new HTTP server instance
func New(deps Dependencies, cfg config.Server) *Server {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewMemoryStore()
	}

	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
		window: config.Duration(cfg.RateLimit.Window, time.Minute),
		log:    logger.Get(),
		now:    time.Now,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 120*time.Second),
	}

	if cfg.APIKey == "" {
		s.log.Warn("No API key configured, API routes are open")
	}
	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.With(s.rateLimit("summary")).Post("/summary", s.handleSummary)
		r.Get("/summaries/latest", s.handleLatestSummary)
		r.With(s.rateLimit("trail")).Post("/trail", s.handleTrail)

		r.Route("/campaigns", func(r chi.Router) {
			r.With(s.rateLimit("campaign")).Post("/", s.handleCreateCampaign)
			r.Get("/latest", s.handleLatestCampaign)
			r.Get("/{id}", s.handleGetCampaign)
			r.With(s.rateLimit("replace")).Post("/{id}/traits/{index}", s.handleReplaceTrait)
			r.With(s.rateLimit("replace")).Post("/{id}/traits/{index}/statements/{stmt}", s.handleReplaceStatement)
			r.With(s.rateLimit("rating")).Post("/{id}/ratings", s.handleSubmitRating)
			r.Get("/{id}/results", s.handleResults)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
