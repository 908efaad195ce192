package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/utils"
)

// Repository handles the catalog snapshot stored in catalog.db.
// Items are stored as JSON rows keyed by id and replaced wholesale when the
// sync collaborator delivers a new snapshot.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "catalog").Logger(),
	}
}

// GetAll returns the current catalog snapshot. FetchedAt is the most recent
// sync time across rows; an empty catalog yields an empty, non-stale snapshot.
func (r *Repository) GetAll() (Snapshot, error) {
	rows, err := r.db.Query("SELECT data, synced_at FROM catalog_items")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	snapshot := Snapshot{}
	var latest int64
	for rows.Next() {
		var data string
		var syncedAt int64
		if err := rows.Scan(&data, &syncedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan catalog item row")
			continue
		}

		var item domain.CatalogItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			r.log.Warn().Err(err).Msg("Failed to decode catalog item")
			continue
		}

		snapshot.Items = append(snapshot.Items, item)
		if syncedAt > latest {
			latest = syncedAt
		}
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read catalog items: %w", err)
	}

	if latest > 0 {
		snapshot.FetchedAt = time.Unix(latest, 0)
	}

	return snapshot, nil
}

// ReplaceAll swaps the stored snapshot for a new one in a single transaction
func (r *Repository) ReplaceAll(items []domain.CatalogItem) error {
	measure := utils.MeasureDBQuery("catalog_replace_all", r.log)
	now := time.Now().Unix()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM catalog_items"); err != nil {
		return fmt.Errorf("failed to clear catalog items: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO catalog_items (id, data, synced_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode catalog item %s: %w", item.ID, err)
		}
		if _, err := stmt.Exec(item.ID, string(data), now); err != nil {
			return fmt.Errorf("failed to insert catalog item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog snapshot: %w", err)
	}

	measure(int64(len(items)))
	r.log.Info().Int("items", len(items)).Msg("Replaced catalog snapshot")

	return nil
}

// Categories returns the distinct category names across the catalog
func (r *Repository) Categories() ([]string, error) {
	snapshot, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, item := range snapshot.Items {
		for _, category := range item.Categories {
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}

	return categories, nil
}
