// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases initializes all 3 databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. config.db - Strategy configurations and seasonal settings
	configDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/config.db",
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}
	container.ConfigDB = configDB

	// 2. catalog.db - Equipment catalog and snapshot cache
	catalogDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/catalog.db",
		Profile: database.ProfileCache, // Rebuilt from inventory syncs, speed over durability
		Name:    "catalog",
	})
	if err != nil {
		configDB.Close()
		return nil, fmt.Errorf("failed to initialize catalog database: %w", err)
	}
	container.CatalogDB = catalogDB

	// 3. history.db - Selection history and engagement metrics
	historyDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/history.db",
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		configDB.Close()
		catalogDB.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	container.HistoryDB = historyDB

	// Apply schemas to all databases (single source of truth)
	for _, db := range []*database.DB{configDB, catalogDB, historyDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
