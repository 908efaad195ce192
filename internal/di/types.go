/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application
 * dependencies. The Container is the single source of truth for all
 * service instances and is passed to the server and scheduler wiring.
 */
package di

import (
	"github.com/Monear/rental-village-social-bot/internal/database"
	"github.com/Monear/rental-village-social-bot/internal/events"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/performance"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
	"github.com/Monear/rental-village-social-bot/internal/reliability"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: 3-database layout (config, catalog, history)
 * - Repositories: data access layer over the three databases
 * - Services: suggestion engine, analytics, backups
 *
 * All dependencies are injected via constructor injection.
 */
type Container struct {
	// Databases (3-database layout)
	// Each database uses SQLite with WAL mode and profile-specific PRAGMAs
	ConfigDB  *database.DB // Strategy configurations and seasonal settings
	CatalogDB *database.DB // Equipment catalog and snapshot cache
	HistoryDB *database.DB // Selection history and engagement metrics

	// Repositories - data access layer
	StrategyRepo    *strategy.Repository
	SeasonalRepo    *seasonal.Repository
	CatalogRepo     *catalog.Repository
	SnapshotCache   *catalog.SnapshotCache
	HistoryRepo     *recency.Repository
	PerformanceRepo *performance.Repository

	// Services - business logic layer
	EventBus           *events.Bus
	RecencyTracker     *recency.Tracker
	SelectionService   *selection.Service
	PerformanceService *performance.Service
	BackupService      *reliability.BackupService
	R2Client           *reliability.R2Client          // nil when backups are disabled
	R2BackupService    *reliability.R2BackupService   // nil when backups are disabled
	MaintenanceJob     *reliability.MaintenanceJob
}

// Databases returns the named database handles, keyed the way the backup
// and system handlers expect them.
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"config":  c.ConfigDB,
		"catalog": c.CatalogDB,
		"history": c.HistoryDB,
	}
}

// Close closes all database connections.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.ConfigDB, c.CatalogDB, c.HistoryDB} {
		if db != nil {
			db.Close()
		}
	}
}
