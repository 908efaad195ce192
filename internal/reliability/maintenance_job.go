package reliability

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/database"
)

// HistoryRetention is how long selection history and engagement metrics are
// kept before the maintenance job prunes them.
const HistoryRetention = 90 * 24 * time.Hour

// Pruner removes rows older than the cutoff
type Pruner interface {
	Prune(cutoff time.Time) (int64, error)
}

// MaintenanceJob performs the nightly database maintenance pass: integrity
// checks, WAL checkpoints, disk space verification, history pruning, and
// local backup rotation.
type MaintenanceJob struct {
	databases     map[string]*database.DB
	backupService *BackupService
	pruners       map[string]Pruner
	dataDir       string
	retentionDays int
	log           zerolog.Logger
}

// NewMaintenanceJob creates the nightly maintenance job
func NewMaintenanceJob(
	databases map[string]*database.DB,
	backupService *BackupService,
	pruners map[string]Pruner,
	dataDir string,
	retentionDays int,
	log zerolog.Logger,
) *MaintenanceJob {
	return &MaintenanceJob{
		databases:     databases,
		backupService: backupService,
		pruners:       pruners,
		dataDir:       dataDir,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("integrity check failed for %s: %w", name, err)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			// Checkpoint failure does not block the rest of the pass
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	cutoff := time.Now().Add(-HistoryRetention)
	for name, pruner := range j.pruners {
		removed, err := pruner.Prune(cutoff)
		if err != nil {
			j.log.Warn().Err(err).Str("store", name).Msg("Failed to prune old rows")
			continue
		}
		if removed > 0 {
			j.log.Info().Str("store", name).Int64("removed", removed).Msg("Pruned old rows")
		}
	}

	if j.backupService != nil {
		if _, err := j.backupService.CreateLocalBackup(time.Now()); err != nil {
			return fmt.Errorf("local backup failed: %w", err)
		}
		if err := j.backupService.PruneLocalBackups(time.Now(), j.retentionDays); err != nil {
			j.log.Warn().Err(err).Msg("Failed to prune local backups")
		}
	}

	j.log.Info().Dur("duration_ms", time.Since(startTime)).Msg("Maintenance completed")
	return nil
}

// checkDiskSpace halts maintenance when free space is critically low
func (j *MaintenanceJob) checkDiskSpace() error {
	stat := syscall.Statfs_t{}
	if err := syscall.Statfs(j.dataDir, &stat); err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(stat.Bavail*uint64(stat.Bsize)) / 1e9

	if availableGB < 0.5 {
		return fmt.Errorf("only %.2f GB free on data volume", availableGB)
	}
	if availableGB < 5.0 {
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}

	return nil
}
