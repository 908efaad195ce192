// Package reliability provides database backups, cloud backup upload, and
// maintenance jobs.
package reliability

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/database"
)

// BackupService creates consistent SQLite backups on local disk
type BackupService struct {
	databases map[string]*database.DB
	backupDir string
	log       zerolog.Logger
}

// NewBackupService creates a backup service for the given databases
func NewBackupService(databases map[string]*database.DB, backupDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		backupDir: backupDir,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the names of all backed-up databases, sorted
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent copy of one database to destPath.
// VACUUM INTO produces a compact snapshot without blocking writers.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database %q", name)
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear backup destination: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to vacuum %s into backup: %w", name, err)
	}

	return nil
}

// CreateLocalBackup backs up every database into a dated directory and
// returns the directory path.
func (s *BackupService) CreateLocalBackup(now time.Time) (string, error) {
	dir := filepath.Join(s.backupDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	for _, name := range s.DatabaseNames() {
		dest := filepath.Join(dir, name+".db")
		if err := s.BackupDatabase(name, dest); err != nil {
			return "", err
		}
		s.log.Debug().Str("database", name).Str("path", dest).Msg("Database backed up")
	}

	s.log.Info().Str("dir", dir).Int("databases", len(s.databases)).Msg("Local backup completed")
	return dir, nil
}

// PruneLocalBackups removes dated backup directories older than retentionDays.
// Always keeps the newest three regardless of age.
func (s *BackupService) PruneLocalBackups(now time.Time, retentionDays int) error {
	const minBackupsToKeep = 3

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	type dated struct {
		name string
		at   time.Time
	}
	var dirs []dated
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		at, err := time.Parse("2006-01-02", entry.Name())
		if err != nil {
			continue
		}
		dirs = append(dirs, dated{name: entry.Name(), at: at})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].at.After(dirs[j].at) })

	if len(dirs) <= minBackupsToKeep || retentionDays <= 0 {
		return nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, dir := range dirs[minBackupsToKeep:] {
		if dir.at.After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.backupDir, dir.name)); err != nil {
			s.log.Warn().Err(err).Str("dir", dir.name).Msg("Failed to remove old backup")
			continue
		}
		s.log.Info().Str("dir", dir.name).Msg("Removed old local backup")
	}

	return nil
}

// Checksum computes the sha256 checksum of a file
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}
