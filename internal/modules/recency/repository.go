package recency

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

// Repository persists selection history to history.db so recency penalties
// survive restarts. Timestamps are stored as unix seconds; loading and saving
// round-trips entries losslessly at that resolution.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new selection history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "recency").Logger(),
	}
}

// Append stores one selection history entry
func (r *Repository) Append(entry domain.SelectionHistoryEntry) error {
	categories, err := json.Marshal(entry.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO selection_history (pillar, item_id, categories, selected_at)
		VALUES (?, ?, ?, ?)
	`, entry.Pillar, entry.ItemID, string(categories), entry.SelectedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert selection history entry: %w", err)
	}

	return nil
}

// LoadSince returns all entries selected at or after the cutoff, oldest first
func (r *Repository) LoadSince(cutoff time.Time) ([]domain.SelectionHistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT pillar, item_id, categories, selected_at
		FROM selection_history
		WHERE selected_at >= ?
		ORDER BY selected_at ASC
	`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query selection history: %w", err)
	}
	defer rows.Close()

	var entries []domain.SelectionHistoryEntry
	for rows.Next() {
		var entry domain.SelectionHistoryEntry
		var categories string
		var selectedAt int64
		if err := rows.Scan(&entry.Pillar, &entry.ItemID, &categories, &selectedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan selection history row")
			continue
		}
		if err := json.Unmarshal([]byte(categories), &entry.Categories); err != nil {
			r.log.Warn().Err(err).Msg("Failed to decode selection history categories")
		}
		entry.SelectedAt = time.Unix(selectedAt, 0).UTC()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff and returns how many were removed
func (r *Repository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM selection_history WHERE selected_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune selection history: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		r.log.Debug().Int64("removed", removed).Msg("Pruned selection history")
	}

	return removed, nil
}
