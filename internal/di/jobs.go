// Package di provides scheduler job registration.
package di

import (
	"fmt"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs wires the background jobs onto a scheduler. An empty cron
// expression disables the corresponding job.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log)

	if cfg.SuggestionSchedule != "" {
		job := scheduler.NewDailySuggestionJob(container.SelectionService, container.EventBus, 1, log)
		if err := sched.AddJob(cfg.SuggestionSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register suggestion job: %w", err)
		}
	} else {
		log.Info().Msg("Daily suggestion job disabled (no schedule configured)")
	}

	// Maintenance runs nightly at 03:15, after the backup window
	if err := sched.AddJob("15 3 * * *", container.MaintenanceJob); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.R2BackupService != nil && cfg.BackupSchedule != "" {
		job := scheduler.NewCloudBackupJob(container.R2BackupService, container.EventBus, cfg.Backup.RetentionDays, log)
		if err := sched.AddJob(cfg.BackupSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register cloud backup job: %w", err)
		}
	}

	return sched, nil
}
