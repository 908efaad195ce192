package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/events"
	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
	"github.com/Monear/rental-village-social-bot/internal/reliability"
)

// SuggestionService produces content suggestions
type SuggestionService interface {
	Suggest(n int, now time.Time) ([]*selection.Result, error)
}

// DailySuggestionJob generates the day's content suggestions and publishes
// them on the event bus for SSE clients and downstream posting tools.
type DailySuggestionJob struct {
	service SuggestionService
	bus     *events.Bus
	count   int
	log     zerolog.Logger
}

// NewDailySuggestionJob creates the daily suggestion job
func NewDailySuggestionJob(service SuggestionService, bus *events.Bus, count int, log zerolog.Logger) *DailySuggestionJob {
	if count < 1 {
		count = 1
	}
	return &DailySuggestionJob{
		service: service,
		bus:     bus,
		count:   count,
		log:     log.With().Str("job", "daily_suggestion").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *DailySuggestionJob) Name() string {
	return "daily_suggestion"
}

// Run generates suggestions and publishes them
func (j *DailySuggestionJob) Run() error {
	results, err := j.service.Suggest(j.count, time.Now())
	if err != nil {
		if j.bus != nil {
			j.bus.PublishError("selection", err, map[string]interface{}{"job": j.Name()})
		}
		return err
	}

	for _, result := range results {
		j.log.Info().
			Str("pillar", result.Pillar).
			Str("item", result.ItemName).
			Float64("score", result.Breakdown.Total).
			Msg("Daily suggestion")

		if j.bus != nil {
			j.bus.Publish(events.SuggestionGenerated, "selection", map[string]interface{}{
				"run_id":    result.RunID,
				"pillar":    result.Pillar,
				"item_id":   result.ItemID,
				"item_name": result.ItemName,
				"rationale": result.Rationale,
				"degraded":  result.Degraded,
			})
		}
	}

	return nil
}

// CloudBackupJob uploads a backup archive to R2 and rotates old ones
type CloudBackupJob struct {
	service       *reliability.R2BackupService
	bus           *events.Bus
	retentionDays int
	log           zerolog.Logger
}

// NewCloudBackupJob creates the cloud backup job
func NewCloudBackupJob(service *reliability.R2BackupService, bus *events.Bus, retentionDays int, log zerolog.Logger) *CloudBackupJob {
	return &CloudBackupJob{
		service:       service,
		bus:           bus,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "cloud_backup").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *CloudBackupJob) Name() string {
	return "cloud_backup"
}

// Run creates and uploads a backup, then rotates old ones
func (j *CloudBackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		if j.bus != nil {
			j.bus.PublishError("reliability", err, map[string]interface{}{"job": j.Name()})
		}
		return err
	}

	if err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	if j.bus != nil {
		j.bus.Publish(events.BackupCompleted, "reliability", nil)
	}

	return nil
}
