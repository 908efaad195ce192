// Package server provides the HTTP server and routing for the social bot.
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

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/database"
	"github.com/Monear/rental-village-social-bot/internal/events"
)

// RouteRegistrar mounts a module's routes on a router
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Modules holds the per-module HTTP handlers mounted under /api
type Modules struct {
	Strategy    RouteRegistrar
	Seasonal    RouteRegistrar
	Catalog     RouteRegistrar
	Performance RouteRegistrar
	Selection   RouteRegistrar
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Databases map[string]*database.DB
	EventBus  *events.Bus
	Modules   Modules
}

// Server is the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	systemHandlers *SystemHandlers
	eventBus       *events.Bus
	modules        Modules
	startedAt      time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		systemHandlers: NewSystemHandlers(cfg.Databases, cfg.Log),
		eventBus:       cfg.EventBus,
		modules:        cfg.Modules,
		startedAt:      time.Now(),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.eventBus != nil {
			streamHandler := NewEventsStreamHandler(s.eventBus, s.log)
			r.Get("/events/stream", streamHandler.ServeHTTP)
		}

		if s.modules.Strategy != nil {
			r.Route("/strategy", s.modules.Strategy.RegisterRoutes)
		}
		if s.modules.Seasonal != nil {
			r.Route("/seasonal", s.modules.Seasonal.RegisterRoutes)
		}
		if s.modules.Catalog != nil {
			r.Route("/catalog", s.modules.Catalog.RegisterRoutes)
		}
		if s.modules.Performance != nil {
			r.Route("/performance", s.modules.Performance.RegisterRoutes)
		}
		if s.modules.Selection != nil {
			s.modules.Selection.RegisterRoutes(r)
		}

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.systemHandlers.HandleSystemHealth)
			r.Get("/databases", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

// handleHealth is the liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","uptime_seconds":%d}`, int64(time.Since(s.startedAt).Seconds()))
}

// Start starts the HTTP server and blocks until shutdown
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
