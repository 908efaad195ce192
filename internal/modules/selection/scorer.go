package selection

import (
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// Factor names reported in score breakdowns
const (
	FactorRecency      = "recency"
	FactorAvailability = "availability"
	FactorSeasonal     = "seasonal"
	FactorPerformance  = "performance"
	FactorPriority     = "priority"
	FactorPopularity   = "popularity"
	FactorDiversity    = "diversity"
)

// fullFactorWeights applies when both availability and performance data are
// reliable. Weights sum to 1.
var fullFactorWeights = map[string]float64{
	FactorRecency:      0.30,
	FactorAvailability: 0.25,
	FactorSeasonal:     0.20,
	FactorPerformance:  0.15,
	FactorPriority:     0.10,
}

// degradedFactorWeights applies when either signal is unreliable. It never
// references availability or performance. Weights sum to 1.
var degradedFactorWeights = map[string]float64{
	FactorRecency:    0.40,
	FactorSeasonal:   0.30,
	FactorPopularity: 0.20,
	FactorDiversity:  0.10,
}

// freshnessWindowDays is the age span over which the prioritize-new rule
// grades an item's newness when no native priority value exists.
const freshnessWindowDays = 90

// Breakdown explains one item's composite score. Factors holds the raw
// factor scores in [0,1]; Weights holds the weights actually applied, which
// always sum to 1 even when a factor had to be excluded for this item.
type Breakdown struct {
	Factors  map[string]float64 `json:"factors"`
	Weights  map[string]float64 `json:"weights"`
	Total    float64            `json:"total"`
	Degraded bool               `json:"degraded"`
}

// Scorer computes composite scores for catalog items under a chosen pillar.
// The factor set adapts to signal reliability: with trustworthy availability
// and performance data the full set applies, otherwise the degraded set.
type Scorer struct {
	// UpcomingSeasonValue is the partial seasonal-relevance credit for items
	// aligned with the season about to start
	UpcomingSeasonValue float64
	log                 zerolog.Logger
}

// NewScorer creates an item scorer
func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{
		UpcomingSeasonValue: 0.5,
		log:                 log.With().Str("component", "item_scorer").Logger(),
	}
}

// Score filters the candidate set by the strategy's hard rules, then scores
// each surviving item. The returned map may be empty when no candidate survives
// filtering; the engine treats that as a pillar to retry past.
func (s *Scorer) Score(
	pillar string,
	items []domain.CatalogItem,
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	signal *catalog.Signal,
	tracker *recency.Tracker,
	now time.Time,
) map[string]*Breakdown {
	candidates := s.filterCandidates(items, cfg, signal, now)
	if len(candidates) == 0 {
		return map[string]*Breakdown{}
	}

	degraded := !signal.HasReliableAvailabilityData() || !signal.HasReliablePerformanceData()

	norm := s.prepareNormalization(candidates, cfg, signal, tracker, now)

	breakdowns := make(map[string]*Breakdown, len(candidates))
	for _, item := range candidates {
		if degraded {
			breakdowns[item.ID] = s.scoreDegraded(pillar, item, seasonalCtx, tracker, norm, now)
		} else {
			breakdowns[item.ID] = s.scoreFull(pillar, item, seasonalCtx, signal, tracker, norm, now)
		}
	}

	return breakdowns
}

// filterCandidates applies the hard filters: maximum item age and, when
// availability data is trustworthy, the exclude-unavailable rule. With
// unreliable availability data the exclusion is skipped so a flaky upstream
// cannot empty the candidate set.
func (s *Scorer) filterCandidates(
	items []domain.CatalogItem,
	cfg *strategy.Config,
	signal *catalog.Signal,
	now time.Time,
) []domain.CatalogItem {
	excludeUnavailable := cfg.SelectionRules.ExcludeUnavailable && signal.HasReliableAvailabilityData()
	maxAge := cfg.SelectionRules.MaxItemAgeDays

	var candidates []domain.CatalogItem
	for _, item := range items {
		if maxAge > 0 && item.AgeDays(now) > maxAge {
			continue
		}
		if excludeUnavailable && signal.AvailabilityOf(item.ID) != domain.AvailabilityAvailable {
			continue
		}
		candidates = append(candidates, item)
	}

	return candidates
}

// normalization holds per-candidate-set min/max bounds for the scalar inputs
type normalization struct {
	engagement   map[string]float64 // item id -> raw engagement rate
	engMin       float64
	engMax       float64
	priority     map[string]float64 // item id -> raw priority input
	priMin       float64
	priMax       float64
	invert       bool // prioritize-underutilized flips popularity ranking
	categoryUse  map[string]int
	useMin       int
	useMax       int
	diversityFor map[string]int // item id -> least-used of its categories
}

func (s *Scorer) prepareNormalization(
	candidates []domain.CatalogItem,
	cfg *strategy.Config,
	signal *catalog.Signal,
	tracker *recency.Tracker,
	now time.Time,
) *normalization {
	norm := &normalization{
		engagement:   make(map[string]float64),
		priority:     make(map[string]float64),
		diversityFor: make(map[string]int),
		categoryUse:  tracker.CategoryCounts(now),
	}

	var engValues, priValues []float64
	var useValues []float64

	useMargin := cfg.SelectionRules.PrioritizeHighMargin
	norm.invert = !useMargin && cfg.SelectionRules.PrioritizeUnderutilized

	for _, item := range candidates {
		if metrics := signal.PerformanceOf(item.ID); metrics != nil {
			rate := metrics.EngagementRate()
			norm.engagement[item.ID] = rate
			engValues = append(engValues, rate)
		}

		if value := priorityInput(item, useMargin, cfg.SelectionRules.PrioritizeNew, now); value != nil {
			norm.priority[item.ID] = *value
			priValues = append(priValues, *value)
		}

		if len(item.Categories) > 0 {
			least := -1
			for _, category := range item.Categories {
				count := norm.categoryUse[category]
				if least < 0 || count < least {
					least = count
				}
			}
			norm.diversityFor[item.ID] = least
			useValues = append(useValues, float64(least))
		}
	}

	if len(engValues) > 0 {
		norm.engMin = floats.Min(engValues)
		norm.engMax = floats.Max(engValues)
	}
	if len(priValues) > 0 {
		norm.priMin = floats.Min(priValues)
		norm.priMax = floats.Max(priValues)
	}
	if len(useValues) > 0 {
		norm.useMin = int(floats.Min(useValues))
		norm.useMax = int(floats.Max(useValues))
	}

	return norm
}

// priorityInput picks the business-priority scalar for an item: margin when
// the strategy prioritizes high margin, popularity otherwise. When the native
// value is absent and the strategy prioritizes new equipment, freshness
// stands in; otherwise nil excludes the factor for this item.
func priorityInput(item domain.CatalogItem, useMargin, prioritizeNew bool, now time.Time) *float64 {
	if useMargin && item.MarginScore != nil {
		return item.MarginScore
	}
	if !useMargin && item.PopularityScore != nil {
		return item.PopularityScore
	}
	if prioritizeNew && !item.CreatedAt.IsZero() {
		freshness := 1.0 - float64(item.AgeDays(now))/freshnessWindowDays
		if freshness < 0 {
			freshness = 0
		}
		return &freshness
	}
	return nil
}

func (s *Scorer) scoreFull(
	pillar string,
	item domain.CatalogItem,
	seasonalCtx *seasonal.Context,
	signal *catalog.Signal,
	tracker *recency.Tracker,
	norm *normalization,
	now time.Time,
) *Breakdown {
	factors := make(map[string]float64, len(fullFactorWeights))

	factors[FactorRecency] = tracker.PenaltyFor(pillar, item.ID, now)

	if signal.AvailabilityOf(item.ID) == domain.AvailabilityAvailable {
		factors[FactorAvailability] = 1.0
	} else {
		factors[FactorAvailability] = 0.0
	}

	factors[FactorSeasonal] = s.seasonalRelevance(item, seasonalCtx)

	if _, ok := norm.engagement[item.ID]; ok {
		factors[FactorPerformance] = minMax(norm.engagement[item.ID], norm.engMin, norm.engMax, false)
	}

	if _, ok := norm.priority[item.ID]; ok {
		factors[FactorPriority] = minMax(norm.priority[item.ID], norm.priMin, norm.priMax, norm.invert)
	}

	return s.assemble(factors, fullFactorWeights, false)
}

func (s *Scorer) scoreDegraded(
	pillar string,
	item domain.CatalogItem,
	seasonalCtx *seasonal.Context,
	tracker *recency.Tracker,
	norm *normalization,
	now time.Time,
) *Breakdown {
	factors := make(map[string]float64, len(degradedFactorWeights))

	factors[FactorRecency] = tracker.PenaltyFor(pillar, item.ID, now)
	factors[FactorSeasonal] = s.seasonalRelevance(item, seasonalCtx)

	if _, ok := norm.priority[item.ID]; ok {
		factors[FactorPopularity] = minMax(norm.priority[item.ID], norm.priMin, norm.priMax, norm.invert)
	}

	if least, ok := norm.diversityFor[item.ID]; ok {
		// Boost items whose categories appeared least often in recent history
		if norm.useMax > norm.useMin {
			factors[FactorDiversity] = float64(norm.useMax-least) / float64(norm.useMax-norm.useMin)
		} else {
			factors[FactorDiversity] = 1.0
		}
	}

	return s.assemble(factors, degradedFactorWeights, true)
}

// seasonalRelevance grades an item's category alignment: full credit for the
// current season's priority categories, partial for the upcoming season's,
// none otherwise.
func (s *Scorer) seasonalRelevance(item domain.CatalogItem, seasonalCtx *seasonal.Context) float64 {
	if seasonalCtx.InPriorityCategories(seasonalCtx.Current, item.Categories) {
		return 1.0
	}
	if seasonalCtx.InPriorityCategories(seasonalCtx.Current.Next(), item.Categories) {
		return s.UpcomingSeasonValue
	}
	return 0.0
}

// assemble renormalizes the base weights over the factors actually present
// for this item and computes the weighted total. Excluding a factor (missing
// performance or priority data) redistributes its weight across the rest, so
// an item is never penalized for data that simply was not collected.
func (s *Scorer) assemble(factors map[string]float64, baseWeights map[string]float64, degraded bool) *Breakdown {
	weightSum := 0.0
	for name := range factors {
		weightSum += baseWeights[name]
	}

	weights := make(map[string]float64, len(factors))
	total := 0.0
	for name, value := range factors {
		weight := baseWeights[name] / weightSum
		weights[name] = weight
		total += weight * value
	}

	return &Breakdown{
		Factors:  factors,
		Weights:  weights,
		Total:    total,
		Degraded: degraded,
	}
}

// minMax normalizes a value into [0,1] over the candidate set's bounds. A
// degenerate spread (single candidate, or all values equal) normalizes to
// 1.0. Inverting flips the ranking so the smallest value scores highest.
func minMax(value, min, max float64, invert bool) float64 {
	if max <= min {
		return 1.0
	}
	if invert {
		return (max - value) / (max - min)
	}
	return (value - min) / (max - min)
}
