package seasonal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles seasonal settings storage in config.db.
// Like strategy configurations, settings documents are JSON rows with a
// single active row.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new seasonal settings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "seasonal").Logger(),
	}
}

// GetActive returns the active seasonal context, or nil if none is stored
func (r *Repository) GetActive() (*Context, error) {
	var data string
	err := r.db.QueryRow(
		"SELECT data FROM seasonal_settings WHERE active = 1 ORDER BY updated_at DESC LIMIT 1",
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active seasonal settings: %w", err)
	}

	var ctx Context
	if err := json.Unmarshal([]byte(data), &ctx); err != nil {
		return nil, fmt.Errorf("failed to decode seasonal settings: %w", err)
	}

	return &ctx, nil
}

// Save stores a seasonal settings document, optionally activating it
func (r *Repository) Save(title string, ctx *Context, activate bool) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("seasonal context is nil")
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to encode seasonal settings: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if activate {
		if _, err := tx.Exec("UPDATE seasonal_settings SET active = 0, updated_at = ? WHERE active = 1", now); err != nil {
			return "", fmt.Errorf("failed to deactivate previous seasonal settings: %w", err)
		}
	}

	activeFlag := 0
	if activate {
		activeFlag = 1
	}

	_, err = tx.Exec(`
		INSERT INTO seasonal_settings (id, title, active, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, title, activeFlag, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert seasonal settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit seasonal settings: %w", err)
	}

	r.log.Info().Str("id", id).Str("season", string(ctx.Current)).Bool("active", activate).
		Msg("Stored seasonal settings")

	return id, nil
}
