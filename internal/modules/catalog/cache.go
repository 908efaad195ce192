package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache keys for the snapshot cache table
const (
	cacheKeyCatalog     = "catalog_snapshot"
	cacheKeyPerformance = "performance_snapshot"
)

// SnapshotCache persists the last good snapshots in the cache database so a
// failed upstream fetch can still serve data (marked stale). Payloads are
// msgpack-encoded; the cache profile database trades durability for speed.
type SnapshotCache struct {
	db  *sql.DB
	log zerolog.Logger
	// MaxAge bounds how old a cached snapshot may be before it is discarded
	MaxAge time.Duration
}

// NewSnapshotCache creates a snapshot cache over the cache database
func NewSnapshotCache(db *sql.DB, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		db:     db,
		log:    log.With().Str("component", "snapshot_cache").Logger(),
		MaxAge: 7 * 24 * time.Hour,
	}
}

// StoreCatalog caches a catalog snapshot
func (c *SnapshotCache) StoreCatalog(snapshot Snapshot) error {
	return c.store(cacheKeyCatalog, snapshot, snapshot.FetchedAt)
}

// LoadCatalog returns the cached catalog snapshot marked stale, or nil when
// nothing usable is cached.
func (c *SnapshotCache) LoadCatalog() (*Snapshot, error) {
	var snapshot Snapshot
	ok, err := c.load(cacheKeyCatalog, &snapshot)
	if err != nil || !ok {
		return nil, err
	}
	snapshot.Stale = true
	return &snapshot, nil
}

// StorePerformance caches a performance snapshot
func (c *SnapshotCache) StorePerformance(snapshot PerformanceSnapshot) error {
	return c.store(cacheKeyPerformance, snapshot, snapshot.FetchedAt)
}

// LoadPerformance returns the cached performance snapshot marked stale, or nil
func (c *SnapshotCache) LoadPerformance() (*PerformanceSnapshot, error) {
	var snapshot PerformanceSnapshot
	ok, err := c.load(cacheKeyPerformance, &snapshot)
	if err != nil || !ok {
		return nil, err
	}
	snapshot.Stale = true
	return &snapshot, nil
}

func (c *SnapshotCache) store(key string, value interface{}, fetchedAt time.Time) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = c.db.Exec(`
		INSERT INTO snapshot_cache (key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, payload, fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}

	c.log.Debug().Str("key", key).Int("bytes", len(payload)).Msg("Cached snapshot")

	return nil
}

func (c *SnapshotCache) load(key string, out interface{}) (bool, error) {
	var payload []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT payload, fetched_at FROM snapshot_cache WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached %s: %w", key, err)
	}

	if c.MaxAge > 0 && time.Since(time.Unix(fetchedAt, 0)) > c.MaxAge {
		c.log.Debug().Str("key", key).Msg("Cached snapshot too old, ignoring")
		return false, nil
	}

	if err := msgpack.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}

	return true, nil
}
