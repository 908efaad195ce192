// Package di provides dependency injection for repositories.
package di

import (
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/performance"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories over the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.StrategyRepo = strategy.NewRepository(container.ConfigDB.Conn(), log)
	container.SeasonalRepo = seasonal.NewRepository(container.ConfigDB.Conn(), log)
	container.CatalogRepo = catalog.NewRepository(container.CatalogDB.Conn(), log)
	container.SnapshotCache = catalog.NewSnapshotCache(container.CatalogDB.Conn(), log)
	container.HistoryRepo = recency.NewRepository(container.HistoryDB.Conn(), log)
	container.PerformanceRepo = performance.NewRepository(container.HistoryDB.Conn(), log)

	log.Info().Msg("Repositories initialized")

	return nil
}
