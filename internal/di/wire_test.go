package di

import (
	"testing"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:              t.TempDir(),
		Port:                 8010,
		LogLevel:             "disabled",
		ReliabilityThreshold: 0.5,
		SuggestionSchedule:   "0 7 * * *",
		BackupSchedule:       "30 2 * * *",
		Backup:               &config.BackupConfig{RetentionDays: 90},
	}
}

func TestWire_InitializesContainer(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	container, err := Wire(testConfig(t), log)
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.ConfigDB)
	assert.NotNil(t, container.CatalogDB)
	assert.NotNil(t, container.HistoryDB)
	assert.NotNil(t, container.StrategyRepo)
	assert.NotNil(t, container.SeasonalRepo)
	assert.NotNil(t, container.CatalogRepo)
	assert.NotNil(t, container.SnapshotCache)
	assert.NotNil(t, container.HistoryRepo)
	assert.NotNil(t, container.PerformanceRepo)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.SelectionService)
	assert.NotNil(t, container.PerformanceService)
	assert.NotNil(t, container.BackupService)
	assert.NotNil(t, container.MaintenanceJob)

	// Cloud backups stay off without credentials
	assert.Nil(t, container.R2Client)
	assert.Nil(t, container.R2BackupService)
}

func TestWire_DatabaseFilesCreated(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	cfg := testConfig(t)

	container, err := Wire(cfg, log)
	require.NoError(t, err)
	defer container.Close()

	dbs := container.Databases()
	require.Len(t, dbs, 3)
	for name, db := range dbs {
		assert.Equal(t, name, db.Name())
		assert.FileExists(t, db.Path())
	}
}

func TestRegisterJobs(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	cfg := testConfig(t)

	container, err := Wire(cfg, log)
	require.NoError(t, err)
	defer container.Close()

	sched, err := RegisterJobs(container, cfg, log)
	require.NoError(t, err)
	assert.NotNil(t, sched)
}

func TestRegisterJobs_RejectsBadSchedule(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	cfg := testConfig(t)
	cfg.SuggestionSchedule = "not a cron expression"

	container, err := Wire(cfg, log)
	require.NoError(t, err)
	defer container.Close()

	_, err = RegisterJobs(container, cfg, log)
	assert.Error(t, err)
}
