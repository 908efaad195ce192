package database

// schemas maps database names to their schema DDL. All statements use
// IF NOT EXISTS so Migrate can run on every startup.
var schemas = map[string]string{
	// config.db: operator-supplied strategy and seasonal configuration.
	// Configuration documents are stored as JSON; only one row per table
	// carries active=1 at a time.
	"config": `
		CREATE TABLE IF NOT EXISTS strategy_configs (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			active      INTEGER NOT NULL DEFAULT 0,
			data        TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_strategy_configs_active ON strategy_configs(active);

		CREATE TABLE IF NOT EXISTS seasonal_settings (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			active      INTEGER NOT NULL DEFAULT 0,
			data        TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_seasonal_settings_active ON seasonal_settings(active);
	`,

	// catalog.db: read-only snapshot of the external catalog, replaced
	// wholesale by the sync collaborator, plus the msgpack snapshot cache.
	"catalog": `
		CREATE TABLE IF NOT EXISTS catalog_items (
			id         TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			synced_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_cache (
			key         TEXT PRIMARY KEY,
			payload     BLOB NOT NULL,
			fetched_at  INTEGER NOT NULL
		);
	`,

	// history.db: selection history and engagement metrics.
	"history": `
		CREATE TABLE IF NOT EXISTS selection_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			pillar      TEXT NOT NULL,
			item_id     TEXT NOT NULL,
			categories  TEXT NOT NULL DEFAULT '[]',
			selected_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_selection_history_selected_at ON selection_history(selected_at);
		CREATE INDEX IF NOT EXISTS idx_selection_history_pillar ON selection_history(pillar);

		CREATE TABLE IF NOT EXISTS engagement_metrics (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id     TEXT NOT NULL,
			platform    TEXT NOT NULL,
			likes       INTEGER NOT NULL DEFAULT 0,
			comments    INTEGER NOT NULL DEFAULT 0,
			reach       INTEGER NOT NULL DEFAULT 0,
			measured_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_engagement_metrics_item ON engagement_metrics(item_id);
		CREATE INDEX IF NOT EXISTS idx_engagement_metrics_measured_at ON engagement_metrics(measured_at);
	`,
}
