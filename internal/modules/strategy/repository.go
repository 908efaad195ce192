package strategy

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles strategy configuration storage in config.db.
// Configuration documents are stored as JSON rows; exactly one row carries
// active=1 at a time. The engine re-validates whatever this repository
// returns - persistence does not imply validity.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new strategy configuration repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "strategy").Logger(),
	}
}

// GetActive returns the active strategy configuration, or nil if none is set
func (r *Repository) GetActive() (*Config, error) {
	var data string
	err := r.db.QueryRow(
		"SELECT data FROM strategy_configs WHERE active = 1 ORDER BY updated_at DESC LIMIT 1",
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active strategy config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode strategy config: %w", err)
	}

	return &cfg, nil
}

// Save stores a configuration document. When activate is true, any previously
// active configuration is deactivated in the same transaction.
func (r *Repository) Save(cfg *Config, activate bool) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("strategy config is nil")
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode strategy config: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if activate {
		if _, err := tx.Exec("UPDATE strategy_configs SET active = 0, updated_at = ? WHERE active = 1", now); err != nil {
			return "", fmt.Errorf("failed to deactivate previous strategy config: %w", err)
		}
	}

	activeFlag := 0
	if activate {
		activeFlag = 1
	}

	_, err = tx.Exec(`
		INSERT INTO strategy_configs (id, title, active, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, cfg.Title, activeFlag, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert strategy config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit strategy config: %w", err)
	}

	r.log.Info().Str("id", id).Str("title", cfg.Title).Bool("active", activate).
		Msg("Stored strategy configuration")

	return id, nil
}

// ConfigSummary describes a stored configuration without its payload
type ConfigSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Active    bool   `json:"active"`
	UpdatedAt int64  `json:"updated_at"`
}

// List returns summaries of all stored strategy configurations
func (r *Repository) List() ([]ConfigSummary, error) {
	rows, err := r.db.Query(
		"SELECT id, title, active, updated_at FROM strategy_configs ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategy configs: %w", err)
	}
	defer rows.Close()

	var summaries []ConfigSummary
	for rows.Next() {
		var s ConfigSummary
		var active int
		if err := rows.Scan(&s.ID, &s.Title, &active, &s.UpdatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan strategy config row")
			continue
		}
		s.Active = active == 1
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
