// Package server provides the HTTP server and routing for Fundwatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/cache"
	"github.com/aristath/fundwatch/internal/config"
	"github.com/aristath/fundwatch/internal/database"
	"github.com/aristath/fundwatch/internal/modules/assets"
	assetshandlers "github.com/aristath/fundwatch/internal/modules/assets/handlers"
	"github.com/aristath/fundwatch/internal/modules/cashflow"
	cashflowhandlers "github.com/aristath/fundwatch/internal/modules/cashflow/handlers"
	"github.com/aristath/fundwatch/internal/modules/returns"
	returnshandlers "github.com/aristath/fundwatch/internal/modules/returns/handlers"
	"github.com/aristath/fundwatch/internal/modules/summary"
)

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	Config           *config.Config
	LedgerDB         *database.DB
	CacheDB          *database.DB
	CashFlowRepo     *cashflow.Repository
	ReturnsService   *returns.Service
	CacheService     *cache.Service
	SummaryService   *summary.Service
	PositionsService *assets.PositionsService
	Port             int
	DevMode          bool
}

// Server represents the HTTP server
type Server struct {
	router           *chi.Mux
	server           *http.Server
	log              zerolog.Logger
	cfg              *config.Config
	ledgerDB         *database.DB
	cacheDB          *database.DB
	cashFlowRepo     *cashflow.Repository
	returnsService   *returns.Service
	cacheService     *cache.Service
	summaryService   *summary.Service
	positionsService *assets.PositionsService
	systemHandlers   *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:           chi.NewRouter(),
		log:              cfg.Log.With().Str("component", "server").Logger(),
		cfg:              cfg.Config,
		ledgerDB:         cfg.LedgerDB,
		cacheDB:          cfg.CacheDB,
		cashFlowRepo:     cfg.CashFlowRepo,
		returnsService:   cfg.ReturnsService,
		cacheService:     cfg.CacheService,
		summaryService:   cfg.SummaryService,
		positionsService: cfg.PositionsService,
		systemHandlers:   NewSystemHandlers(cfg.Log, cfg.Config, cfg.LedgerDB, cfg.CacheDB),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.systemHandlers.HandleSystemHealth)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})

		cashFlowHandler := cashflowhandlers.NewHandler(s.cashFlowRepo, s.log)
		cashFlowHandler.RegisterRoutes(r)

		returnsHandler := returnshandlers.NewHandler(s.returnsService, s.cacheService, s.summaryService, s.log)
		returnsHandler.RegisterRoutes(r)

		positionsHandler := assetshandlers.NewHandler(s.positionsService, s.log)
		positionsHandler.RegisterRoutes(r)
	})
}

// handleHealth is the plain liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
