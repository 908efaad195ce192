package performance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
)

// MaxSnapshotAge is how old the newest measurement can be before a
// performance snapshot built from storage is marked stale.
const MaxSnapshotAge = 7 * 24 * time.Hour

// Record is one stored engagement measurement for an item on a platform
type Record struct {
	MeasuredAt time.Time `json:"measured_at"`
	ItemID     string    `json:"item_id"`
	Platform   string    `json:"platform"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Reach      int       `json:"reach"`
}

// Metrics converts the record to the domain metrics type
func (r Record) Metrics() domain.PerformanceMetrics {
	return domain.PerformanceMetrics{
		MeasuredAt: r.MeasuredAt,
		Likes:      r.Likes,
		Comments:   r.Comments,
		Reach:      r.Reach,
	}
}

// Repository stores engagement measurements in history.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new engagement metrics repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "performance").Logger(),
	}
}

// Record stores one measurement
func (r *Repository) Record(rec Record) error {
	if rec.ItemID == "" {
		return fmt.Errorf("engagement record missing item id")
	}
	if rec.MeasuredAt.IsZero() {
		rec.MeasuredAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO engagement_metrics (item_id, platform, likes, comments, reach, measured_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ItemID, rec.Platform, rec.Likes, rec.Comments, rec.Reach, rec.MeasuredAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert engagement record: %w", err)
	}

	return nil
}

// MetricsSince returns all measurements at or after the cutoff, oldest first
func (r *Repository) MetricsSince(cutoff time.Time) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT item_id, platform, likes, comments, reach, measured_at
		FROM engagement_metrics
		WHERE measured_at >= ?
		ORDER BY measured_at ASC
	`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement records: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// MetricsForItem returns all measurements for one item, oldest first
func (r *Repository) MetricsForItem(itemID string) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT item_id, platform, likes, comments, reach, measured_at
		FROM engagement_metrics
		WHERE item_id = ?
		ORDER BY measured_at ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement records for item: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// LatestPerItem builds a performance snapshot from the newest measurement of
// each item. Staleness is judged against the newest measurement overall.
func (r *Repository) LatestPerItem(now time.Time) (*catalog.PerformanceSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT m.item_id, m.platform, m.likes, m.comments, m.reach, m.measured_at
		FROM engagement_metrics m
		JOIN (
			SELECT item_id, MAX(measured_at) AS latest
			FROM engagement_metrics
			GROUP BY item_id
		) newest ON newest.item_id = m.item_id AND newest.latest = m.measured_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest engagement records: %w", err)
	}
	defer rows.Close()

	records, err := r.scanRecords(rows)
	if err != nil {
		return nil, err
	}

	snapshot := &catalog.PerformanceSnapshot{
		Metrics: make(map[string]domain.PerformanceMetrics, len(records)),
	}
	for _, rec := range records {
		snapshot.Metrics[rec.ItemID] = rec.Metrics()
		if rec.MeasuredAt.After(snapshot.FetchedAt) {
			snapshot.FetchedAt = rec.MeasuredAt
		}
	}

	snapshot.Stale = snapshot.FetchedAt.IsZero() || now.Sub(snapshot.FetchedAt) > MaxSnapshotAge

	return snapshot, nil
}

// Prune removes measurements older than the cutoff
func (r *Repository) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM engagement_metrics WHERE measured_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune engagement records: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var measuredAt int64
		if err := rows.Scan(&rec.ItemID, &rec.Platform, &rec.Likes, &rec.Comments, &rec.Reach, &measuredAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan engagement record row")
			continue
		}
		rec.MeasuredAt = time.Unix(measuredAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
