// Package main is the entry point for the rental village social bot service.
// The service picks diverse, seasonally relevant equipment content for social
// media posts and tracks how the published posts perform.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/di"
	cataloghandlers "github.com/Monear/rental-village-social-bot/internal/modules/catalog/handlers"
	performancehandlers "github.com/Monear/rental-village-social-bot/internal/modules/performance/handlers"
	seasonalhandlers "github.com/Monear/rental-village-social-bot/internal/modules/seasonal/handlers"
	selectionhandlers "github.com/Monear/rental-village-social-bot/internal/modules/selection/handlers"
	strategyhandlers "github.com/Monear/rental-village-social-bot/internal/modules/strategy/handlers"
	"github.com/Monear/rental-village-social-bot/internal/server"
	"github.com/Monear/rental-village-social-bot/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes logging
// 3. Wires all dependencies via the DI container (databases, repositories, services)
// 4. Starts the HTTP server for API endpoints
// 5. Starts the scheduler for daily suggestions, maintenance, and backups
// 6. Waits for shutdown signal and performs graceful shutdown
//
// The application uses a 3-database architecture:
// - config.db: Strategy configurations and seasonal settings
// - catalog.db: Equipment catalog and cached inventory snapshots
// - history.db: Selection history and engagement metrics
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting rental village social bot")

	// Wire all dependencies: databases, repositories, services
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// HTTP server with per-module handlers mounted under /api
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Databases: container.Databases(),
		EventBus:  container.EventBus,
		Modules: server.Modules{
			Strategy:    strategyhandlers.NewHandler(container.StrategyRepo, log),
			Seasonal:    seasonalhandlers.NewHandler(container.SeasonalRepo, log),
			Catalog:     cataloghandlers.NewHandler(container.CatalogRepo, container.SnapshotCache, log),
			Performance: performancehandlers.NewHandler(container.PerformanceRepo, container.PerformanceService, container.StrategyRepo, container.HistoryRepo, log),
			Selection:   selectionhandlers.NewHandler(container.SelectionService, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Background jobs: daily suggestion, nightly maintenance, cloud backups
	sched, err := di.RegisterJobs(container, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}
	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop the scheduler first so no job starts mid-shutdown
	sched.Stop()

	// Graceful shutdown: give in-flight requests up to 10 seconds
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
