package catalog

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

func setupCatalogTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE catalog_items (
			id         TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			synced_at  INTEGER NOT NULL
		);
		CREATE TABLE snapshot_cache (
			key         TEXT PRIMARY KEY,
			payload     BLOB NOT NULL,
			fetched_at  INTEGER NOT NULL
		);
	`)
	require.NoError(t, err)

	return db
}

func TestRepository_ReplaceAllAndGetAll(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	popularity := 0.8
	items := []domain.CatalogItem{
		{
			ID:              "exc-1",
			Name:            "Mini Excavator",
			Categories:      []string{"excavation", "landscaping"},
			Availability:    domain.AvailabilityAvailable,
			CreatedAt:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			PopularityScore: &popularity,
		},
		{
			ID:           "saw-2",
			Name:         "Concrete Saw",
			Categories:   []string{"concrete"},
			Availability: domain.AvailabilityMaintenance,
			CreatedAt:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, repo.ReplaceAll(items))

	snapshot, err := repo.GetAll()
	require.NoError(t, err)

	require.Len(t, snapshot.Items, 2)
	assert.False(t, snapshot.Stale)
	assert.False(t, snapshot.FetchedAt.IsZero())

	byID := make(map[string]domain.CatalogItem)
	for _, item := range snapshot.Items {
		byID[item.ID] = item
	}
	require.Contains(t, byID, "exc-1")
	require.NotNil(t, byID["exc-1"].PopularityScore)
	assert.Equal(t, 0.8, *byID["exc-1"].PopularityScore)
	assert.Nil(t, byID["saw-2"].PopularityScore)

	// Replacing again drops items that disappeared upstream
	require.NoError(t, repo.ReplaceAll(items[:1]))
	snapshot, err = repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 1)
}

func TestRepository_Categories(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	require.NoError(t, repo.ReplaceAll([]domain.CatalogItem{
		{ID: "a", Categories: []string{"excavation", "landscaping"}},
		{ID: "b", Categories: []string{"landscaping", "concrete"}},
	}))

	categories, err := repo.Categories()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"excavation", "landscaping", "concrete"}, categories)
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	db := setupCatalogTestDB(t)
	cache := NewSnapshotCache(db, zerolog.New(nil).Level(zerolog.Disabled))

	snapshot := Snapshot{
		FetchedAt: time.Now().Truncate(time.Second),
		Items: []domain.CatalogItem{
			{ID: "exc-1", Name: "Mini Excavator", Availability: domain.AvailabilityAvailable},
		},
	}

	require.NoError(t, cache.StoreCatalog(snapshot))

	loaded, err := cache.LoadCatalog()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// Loaded snapshots are always marked stale
	assert.True(t, loaded.Stale)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "exc-1", loaded.Items[0].ID)
}

func TestSnapshotCache_MissAndExpiry(t *testing.T) {
	db := setupCatalogTestDB(t)
	cache := NewSnapshotCache(db, zerolog.New(nil).Level(zerolog.Disabled))

	loaded, err := cache.LoadCatalog()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	old := Snapshot{FetchedAt: time.Now().Add(-30 * 24 * time.Hour)}
	require.NoError(t, cache.StoreCatalog(old))

	loaded, err = cache.LoadCatalog()
	require.NoError(t, err)
	assert.Nil(t, loaded, "snapshots past MaxAge are discarded")
}

func TestSnapshotCache_Performance(t *testing.T) {
	db := setupCatalogTestDB(t)
	cache := NewSnapshotCache(db, zerolog.New(nil).Level(zerolog.Disabled))

	perf := PerformanceSnapshot{
		FetchedAt: time.Now(),
		Metrics: map[string]domain.PerformanceMetrics{
			"exc-1": {Likes: 42, Comments: 7, Reach: 1200},
		},
	}

	require.NoError(t, cache.StorePerformance(perf))

	loaded, err := cache.LoadPerformance()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Stale)
	assert.Equal(t, 42, loaded.Metrics["exc-1"].Likes)
}
