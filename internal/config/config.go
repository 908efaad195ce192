// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Signal reliability threshold: the minimum fraction of catalog items that
	// must carry a usable value before a data source is trusted for scoring.
	ReliabilityThreshold float64

	// Cron expressions for scheduled jobs (empty disables the job)
	SuggestionSchedule string
	BackupSchedule     string

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup configuration (Cloudflare R2).
// Backups stay disabled until all credentials are present.
type BackupConfig struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check SOCIAL_BOT_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("SOCIAL_BOT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("PORT", 8010),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ReliabilityThreshold: getEnvAsFloat("RELIABILITY_THRESHOLD", 0.5),
		SuggestionSchedule:   getEnv("SUGGESTION_SCHEDULE", "0 7 * * *"),
		BackupSchedule:       getEnv("BACKUP_SCHEDULE", "30 2 * * *"),
		Backup:               loadBackupConfig(),
	}

	return cfg, nil
}

// loadBackupConfig reads backup settings; backups are enabled only when the
// bucket and all credentials are configured.
func loadBackupConfig() *BackupConfig {
	cfg := &BackupConfig{
		AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("R2_BUCKET_NAME", ""),
		RetentionDays:   getEnvAsInt("R2_BACKUP_RETENTION_DAYS", 90),
	}
	cfg.Enabled = cfg.AccountID != "" && cfg.AccessKeyID != "" &&
		cfg.SecretAccessKey != "" && cfg.Bucket != ""
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}
