package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

func floatPtr(v float64) *float64 { return &v }

func plainRulesConfig() *strategy.Config {
	return &strategy.Config{
		Title:                "test",
		PillarWeights:        map[string]float64{"equipment_spotlight": 1.0},
		PlatformDistribution: map[string]float64{"blog": 100},
		SelectionRules: strategy.SelectionRules{
			ExcludeUnavailable: true,
			MaxItemAgeDays:     365,
		},
	}
}

func scorerTestItems(now time.Time) []domain.CatalogItem {
	return []domain.CatalogItem{
		{
			ID:              "excavator",
			Name:            "Mini Excavator",
			CreatedAt:       now.Add(-60 * 24 * time.Hour),
			Availability:    domain.AvailabilityAvailable,
			Categories:      []string{"excavation"},
			PopularityScore: floatPtr(0.9),
		},
		{
			ID:              "generator",
			Name:            "Portable Generator",
			CreatedAt:       now.Add(-90 * 24 * time.Hour),
			Availability:    domain.AvailabilityAvailable,
			Categories:      []string{"generators"},
			PopularityScore: floatPtr(0.2),
		},
	}
}

func reliablePerformance(now time.Time) *catalog.PerformanceSnapshot {
	return &catalog.PerformanceSnapshot{
		FetchedAt: now,
		Metrics: map[string]domain.PerformanceMetrics{
			"excavator": {MeasuredAt: now, Likes: 40, Comments: 10, Reach: 1000},
			"generator": {MeasuredAt: now, Likes: 5, Comments: 0, Reach: 1000},
		},
	}
}

func weightTotal(breakdown *Breakdown) float64 {
	sum := 0.0
	for _, w := range breakdown.Weights {
		sum += w
	}
	return sum
}

func TestScorer_FullFactorSetWhenSignalsReliable(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	snapshot := catalog.Snapshot{FetchedAt: now, Items: items}
	signal := catalog.NewSignal(snapshot, reliablePerformance(now), 0)
	require.True(t, signal.HasReliableAvailabilityData())
	require.True(t, signal.HasReliablePerformanceData())

	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	require.Len(t, breakdowns, 2)
	for id, breakdown := range breakdowns {
		assert.False(t, breakdown.Degraded, id)
		assert.Contains(t, breakdown.Factors, FactorRecency)
		assert.Contains(t, breakdown.Factors, FactorAvailability)
		assert.Contains(t, breakdown.Factors, FactorSeasonal)
		assert.Contains(t, breakdown.Factors, FactorPerformance)
		assert.Contains(t, breakdown.Factors, FactorPriority)
		assert.NotContains(t, breakdown.Factors, FactorDiversity)
		assert.InDelta(t, 1.0, weightTotal(breakdown), 1e-9, id)
	}
}

func TestScorer_DegradedFactorSetWhenSnapshotStale(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	snapshot := catalog.Snapshot{FetchedAt: now.Add(-8 * 24 * time.Hour), Items: items, Stale: true}
	signal := catalog.NewSignal(snapshot, nil, 0)
	require.False(t, signal.HasReliableAvailabilityData())

	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	require.Len(t, breakdowns, 2)
	for id, breakdown := range breakdowns {
		assert.True(t, breakdown.Degraded, id)
		assert.Contains(t, breakdown.Factors, FactorRecency)
		assert.Contains(t, breakdown.Factors, FactorSeasonal)
		assert.Contains(t, breakdown.Factors, FactorPopularity)
		assert.Contains(t, breakdown.Factors, FactorDiversity)
		assert.NotContains(t, breakdown.Factors, FactorAvailability)
		assert.NotContains(t, breakdown.Factors, FactorPerformance)
		assert.InDelta(t, 1.0, weightTotal(breakdown), 1e-9, id)
	}
}

func TestScorer_ExcludeUnavailableRequiresReliableData(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	items[1].Availability = domain.AvailabilityMaintenance

	scorer := NewScorer(testLogger())
	cfg := plainRulesConfig()

	fresh := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)
	breakdowns := scorer.Score("equipment_spotlight", items, cfg,
		neutralSeasonalContext(), fresh, recency.NewTracker(), now)
	assert.Len(t, breakdowns, 1)
	assert.Contains(t, breakdowns, "excavator")

	// Stale availability data must not be trusted to drop candidates.
	stale := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items, Stale: true}, nil, 0)
	breakdowns = scorer.Score("equipment_spotlight", items, cfg,
		neutralSeasonalContext(), stale, recency.NewTracker(), now)
	assert.Len(t, breakdowns, 2)
}

func TestScorer_MaxItemAgeFilters(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	items[0].CreatedAt = now.Add(-400 * 24 * time.Hour)

	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)
	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	assert.Len(t, breakdowns, 1)
	assert.Contains(t, breakdowns, "generator")
}

func TestScorer_MissingPerformanceExcludesFactorAndRenormalizes(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)

	// Metrics cover only one of two items; coverage of 0.5 still clears the
	// default threshold, so the full factor set applies.
	perf := &catalog.PerformanceSnapshot{
		FetchedAt: now,
		Metrics: map[string]domain.PerformanceMetrics{
			"excavator": {MeasuredAt: now, Likes: 40, Comments: 10, Reach: 1000},
		},
	}
	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, perf, 0)
	require.True(t, signal.HasReliablePerformanceData())

	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	withMetrics := breakdowns["excavator"]
	assert.Contains(t, withMetrics.Factors, FactorPerformance)
	assert.InDelta(t, 0.15, withMetrics.Weights[FactorPerformance], 1e-9)

	withoutMetrics := breakdowns["generator"]
	assert.NotContains(t, withoutMetrics.Factors, FactorPerformance)
	assert.InDelta(t, 1.0, weightTotal(withoutMetrics), 1e-9)
	assert.Greater(t, withoutMetrics.Weights[FactorRecency], 0.30)
}

func TestScorer_PrioritizeUnderutilizedInvertsPopularity(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	cfg := plainRulesConfig()
	cfg.SelectionRules.PrioritizeUnderutilized = true

	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)
	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, cfg,
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	assert.InDelta(t, 0.0, breakdowns["excavator"].Factors[FactorPriority], 1e-9)
	assert.InDelta(t, 1.0, breakdowns["generator"].Factors[FactorPriority], 1e-9)
}

func TestScorer_PrioritizeHighMarginUsesMarginScore(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	items[0].MarginScore = floatPtr(0.2)
	items[1].MarginScore = floatPtr(0.8)
	cfg := plainRulesConfig()
	cfg.SelectionRules.PrioritizeHighMargin = true

	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)
	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, cfg,
		neutralSeasonalContext(), signal, recency.NewTracker(), now)

	assert.InDelta(t, 0.0, breakdowns["excavator"].Factors[FactorPriority], 1e-9)
	assert.InDelta(t, 1.0, breakdowns["generator"].Factors[FactorPriority], 1e-9)
}

func TestScorer_SeasonalRelevance(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	items = append(items, domain.CatalogItem{
		ID:           "ladder",
		Name:         "Ladder",
		CreatedAt:    now.Add(-30 * 24 * time.Hour),
		Availability: domain.AvailabilityAvailable,
		Categories:   []string{"access"},
	})

	ctx := neutralSeasonalContext()
	ctx.PriorityCategories = map[seasonal.Season][]string{
		seasonal.SeasonSummer: {"excavation"},
		seasonal.SeasonFall:   {"generators"},
	}

	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)
	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		ctx, signal, recency.NewTracker(), now)

	assert.InDelta(t, 1.0, breakdowns["excavator"].Factors[FactorSeasonal], 1e-9)
	assert.InDelta(t, 0.5, breakdowns["generator"].Factors[FactorSeasonal], 1e-9)
	assert.InDelta(t, 0.0, breakdowns["ladder"].Factors[FactorSeasonal], 1e-9)
}

func TestScorer_RecentlySelectedItemPenalized(t *testing.T) {
	now := time.Now()
	items := scorerTestItems(now)
	signal := catalog.NewSignal(catalog.Snapshot{FetchedAt: now, Items: items}, reliablePerformance(now), 0)

	tracker := recency.NewTracker()
	tracker.Record("equipment_spotlight", "excavator", items[0].Categories, now.Add(-time.Hour))

	scorer := NewScorer(testLogger())
	breakdowns := scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, recency.NewTracker(), now)
	baseline := breakdowns["excavator"].Factors[FactorRecency]
	assert.InDelta(t, 1.0, baseline, 1e-9)

	breakdowns = scorer.Score("equipment_spotlight", items, plainRulesConfig(),
		neutralSeasonalContext(), signal, tracker, now)
	assert.Less(t, breakdowns["excavator"].Factors[FactorRecency], 0.01)
	assert.InDelta(t, 1.0, breakdowns["generator"].Factors[FactorRecency], 1e-9)
}
