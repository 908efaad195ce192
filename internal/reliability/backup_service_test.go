package reliability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monear/rental-village-social-bot/internal/database"
)

func setupBackupService(t *testing.T) (*BackupService, string) {
	dataDir := t.TempDir()
	backupDir := filepath.Join(dataDir, "backups")

	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	service := NewBackupService(
		map[string]*database.DB{"config": db},
		backupDir,
		zerolog.New(nil).Level(zerolog.Disabled),
	)
	return service, backupDir
}

func TestBackupService_CreateLocalBackup(t *testing.T) {
	service, _ := setupBackupService(t)

	dir, err := service.CreateLocalBackup(time.Date(2026, time.March, 5, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	backupPath := filepath.Join(dir, "config.db")
	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	checksum, err := Checksum(backupPath)
	require.NoError(t, err)
	assert.Contains(t, checksum, "sha256:")
}

func TestBackupService_BackupUnknownDatabase(t *testing.T) {
	service, _ := setupBackupService(t)
	assert.Error(t, service.BackupDatabase("missing", filepath.Join(t.TempDir(), "out.db")))
}

func TestBackupService_PruneKeepsNewestThree(t *testing.T) {
	service, backupDir := setupBackupService(t)

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		day := now.AddDate(0, 0, -i*10)
		require.NoError(t, os.MkdirAll(filepath.Join(backupDir, day.Format("2006-01-02")), 0o755))
	}

	require.NoError(t, service.PruneLocalBackups(now, 14))

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestBackupService_PruneZeroRetentionKeepsAll(t *testing.T) {
	service, backupDir := setupBackupService(t)

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := now.AddDate(0, 0, -i*30)
		require.NoError(t, os.MkdirAll(filepath.Join(backupDir, day.Format("2006-01-02")), 0o755))
	}

	require.NoError(t, service.PruneLocalBackups(now, 0))

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
