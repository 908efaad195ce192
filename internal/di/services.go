// Package di provides dependency injection for services.
package di

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/events"
	"github.com/Monear/rental-village-social-bot/internal/modules/performance"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
	"github.com/Monear/rental-village-social-bot/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services with their repository dependencies
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus(log)

	// Suggestion pipeline: tracker -> engine -> service
	container.RecencyTracker = recency.NewTracker()

	sampler := selection.NewSampler(rand.New(rand.NewSource(time.Now().UnixNano())))
	engine := selection.NewEngine(
		sampler,
		container.RecencyTracker,
		container.HistoryRepo,
		cfg.ReliabilityThreshold,
		log,
	)

	container.SelectionService = selection.NewService(
		engine,
		container.StrategyRepo,
		container.SeasonalRepo,
		container.CatalogRepo,
		container.SnapshotCache,
		container.PerformanceRepo,
		container.RecencyTracker,
		log,
	)

	// Seed the recency tracker from persisted history so restarts do not
	// forget what was recently posted.
	if err := container.SelectionService.WarmupHistory(container.HistoryRepo, time.Now()); err != nil {
		return fmt.Errorf("failed to restore selection history: %w", err)
	}

	container.PerformanceService = performance.NewService(container.PerformanceRepo, log)

	// Backups: local snapshots always, cloud upload only when R2 is configured
	container.BackupService = reliability.NewBackupService(
		container.Databases(),
		filepath.Join(cfg.DataDir, "backups"),
		log,
	)

	if cfg.Backup != nil && cfg.Backup.Enabled {
		r2Client, err := reliability.NewR2Client(
			cfg.Backup.AccountID,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			return fmt.Errorf("failed to create R2 client: %w", err)
		}
		container.R2Client = r2Client
		container.R2BackupService = reliability.NewR2BackupService(
			r2Client,
			container.BackupService,
			cfg.DataDir,
			log,
		)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Cloud backups enabled")
	} else {
		log.Info().Msg("Cloud backups disabled (R2 credentials not configured)")
	}

	retentionDays := 0
	if cfg.Backup != nil {
		retentionDays = cfg.Backup.RetentionDays
	}
	container.MaintenanceJob = reliability.NewMaintenanceJob(
		container.Databases(),
		container.BackupService,
		map[string]reliability.Pruner{
			"selection_history":  container.HistoryRepo,
			"engagement_metrics": container.PerformanceRepo,
		},
		cfg.DataDir,
		retentionDays,
		log,
	)

	log.Info().Msg("Services initialized")

	return nil
}
