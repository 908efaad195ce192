package strategy

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStrategyTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE strategy_configs (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			active      INTEGER NOT NULL DEFAULT 0,
			data        TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)

	return db
}

func TestRepository_GetActive_Empty(t *testing.T) {
	db := setupStrategyTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	cfg, err := repo.GetActive()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestRepository_SaveAndGetActive(t *testing.T) {
	db := setupStrategyTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	id, err := repo.Save(DefaultConfig(), true)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	cfg, err := repo.GetActive()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultConfig().PillarWeights, cfg.PillarWeights)
	assert.Equal(t, DefaultConfig().SelectionRules, cfg.SelectionRules)
}

func TestRepository_ActivateDeactivatesPrevious(t *testing.T) {
	db := setupStrategyTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	first := DefaultConfig()
	first.Title = "First"
	_, err := repo.Save(first, true)
	require.NoError(t, err)

	second := DefaultConfig()
	second.Title = "Second"
	second.PillarWeights = map[string]float64{"spotlight": 0.6, "safety": 0.4}
	_, err = repo.Save(second, true)
	require.NoError(t, err)

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Second", active.Title)

	summaries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	activeCount := 0
	for _, s := range summaries {
		if s.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestRepository_SaveInactiveKeepsActive(t *testing.T) {
	db := setupStrategyTestDB(t)
	repo := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))

	active := DefaultConfig()
	active.Title = "Active"
	_, err := repo.Save(active, true)
	require.NoError(t, err)

	draft := DefaultConfig()
	draft.Title = "Draft"
	_, err = repo.Save(draft, false)
	require.NoError(t, err)

	got, err := repo.GetActive()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Active", got.Title)
}
