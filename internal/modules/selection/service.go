package selection

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
	"github.com/Monear/rental-village-social-bot/internal/utils"
)

// MaxCatalogAge bounds how old a stored catalog snapshot may be before the
// engine scores it with the degraded factor set.
const MaxCatalogAge = 24 * time.Hour

// StrategySource loads the active strategy configuration
type StrategySource interface {
	GetActive() (*strategy.Config, error)
}

// SeasonalSource loads the active seasonal settings
type SeasonalSource interface {
	GetActive() (*seasonal.Context, error)
}

// CatalogSource loads the stored catalog snapshot
type CatalogSource interface {
	GetAll() (catalog.Snapshot, error)
}

// PerformanceSource loads the newest engagement metrics per item
type PerformanceSource interface {
	LatestPerItem(now time.Time) (*catalog.PerformanceSnapshot, error)
}

// HistoryLoader loads persisted selection history
type HistoryLoader interface {
	LoadSince(cutoff time.Time) ([]domain.SelectionHistoryEntry, error)
}

// Service assembles the engine's inputs from storage and runs suggestion
// requests. Every input degrades independently: a missing strategy falls
// back to the defaults, a missing catalog falls back to the snapshot cache,
// and missing performance data simply switches the engine to the degraded
// factor set.
type Service struct {
	engine      *Engine
	strategies  StrategySource
	seasons     SeasonalSource
	catalogRepo CatalogSource
	cache       *catalog.SnapshotCache
	performance PerformanceSource
	tracker     *recency.Tracker
	log         zerolog.Logger
}

// NewService creates a suggestion service. cache and performance may be nil.
func NewService(
	engine *Engine,
	strategies StrategySource,
	seasons SeasonalSource,
	catalogRepo CatalogSource,
	cache *catalog.SnapshotCache,
	performance PerformanceSource,
	tracker *recency.Tracker,
	log zerolog.Logger,
) *Service {
	return &Service{
		engine:      engine,
		strategies:  strategies,
		seasons:     seasons,
		catalogRepo: catalogRepo,
		cache:       cache,
		performance: performance,
		tracker:     tracker,
		log:         log.With().Str("service", "selection").Logger(),
	}
}

// WarmupHistory seeds the in-memory recency tracker from persisted selection
// history. Called once at startup.
func (s *Service) WarmupHistory(loader HistoryLoader, now time.Time) error {
	entries, err := loader.LoadSince(now.Add(-recency.DefaultWindow))
	if err != nil {
		return err
	}
	s.tracker.Restore(entries, now)
	s.log.Info().Int("entries", len(entries)).Msg("Restored selection history")
	return nil
}

// Suggest produces n content suggestions
func (s *Service) Suggest(n int, now time.Time) ([]*Result, error) {
	defer utils.OperationTimer("suggest", s.log)()

	cfg, err := s.loadStrategy()
	if err != nil {
		return nil, err
	}

	snapshot, err := s.loadCatalog(now)
	if err != nil {
		return nil, err
	}

	return s.engine.SuggestN(n, cfg, s.loadSeasonal(now), snapshot, s.loadPerformance(now), now)
}

// PillarDistribution reports the effective pillar probabilities a run at now
// would draw from, after seasonal boosts and recency penalties.
func (s *Service) PillarDistribution(now time.Time) (map[string]float64, error) {
	cfg, err := s.loadStrategy()
	if err != nil {
		return nil, err
	}
	return s.engine.PillarDistribution(cfg, s.loadSeasonal(now), now)
}

func (s *Service) loadStrategy() (*strategy.Config, error) {
	cfg, err := s.strategies.GetActive()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		s.log.Debug().Msg("No active strategy configuration, using defaults")
		return strategy.DefaultConfig(), nil
	}
	return cfg, nil
}

// loadSeasonal returns the active seasonal settings with the current season
// recomputed for now. Settings saved months ago must not pin an old season.
func (s *Service) loadSeasonal(now time.Time) *seasonal.Context {
	ctx, err := s.seasons.GetActive()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load seasonal settings, using defaults")
		return seasonal.DefaultContext(now)
	}
	if ctx == nil {
		return seasonal.DefaultContext(now)
	}
	ctx.Current = seasonal.SeasonFor(now)
	return ctx
}

// loadCatalog prefers the stored catalog and falls back to the snapshot
// cache. Snapshots older than MaxCatalogAge are marked stale so the engine
// stops trusting their availability statuses.
func (s *Service) loadCatalog(now time.Time) (catalog.Snapshot, error) {
	snapshot, err := s.catalogRepo.GetAll()
	if err != nil || len(snapshot.Items) == 0 {
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to load catalog, trying snapshot cache")
		}
		if s.cache != nil {
			if cached, cacheErr := s.cache.LoadCatalog(); cacheErr == nil && cached != nil {
				return *cached, nil
			}
		}
		if err != nil {
			return catalog.Snapshot{}, err
		}
		return snapshot, nil
	}

	if now.Sub(snapshot.FetchedAt) > MaxCatalogAge {
		snapshot.Stale = true
	}

	if s.cache != nil {
		if err := s.cache.StoreCatalog(snapshot); err != nil {
			s.log.Warn().Err(err).Msg("Failed to refresh catalog snapshot cache")
		}
	}

	return snapshot, nil
}

// loadPerformance returns the newest engagement metrics, or nil when none
// can be loaded. A nil snapshot just means degraded scoring.
func (s *Service) loadPerformance(now time.Time) *catalog.PerformanceSnapshot {
	if s.performance == nil {
		return nil
	}
	snapshot, err := s.performance.LatestPerItem(now)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load engagement metrics")
		return nil
	}
	if len(snapshot.Metrics) == 0 {
		return nil
	}
	return snapshot
}
