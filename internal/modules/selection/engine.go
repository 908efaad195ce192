package selection

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// pillarRationales explains why each content pillar earns a slot in the
// posting calendar. Surfaced verbatim in suggestion output.
var pillarRationales = map[string]string{
	"equipment_spotlight": "Highlights a specific rental item, its capabilities, and typical jobs it handles",
	"seasonal_content":    "Ties equipment to the projects customers are planning for the current season",
	"project_showcase":    "Demonstrates real project outcomes achieved with rented equipment",
	"safety_training":     "Covers safe operation and best practices for equipment in the catalog",
	"educational_content": "Teaches customers how to choose and use the right equipment for a job",
}

// HistorySink persists selection history entries as the engine records them.
// The recency repository satisfies it; a nil sink keeps history in memory
// only.
type HistorySink interface {
	Append(entry domain.SelectionHistoryEntry) error
}

// Result is one content suggestion: the chosen pillar, the chosen catalog
// item, and the scoring evidence behind both.
type Result struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Pillar      string             `json:"pillar"`
	ItemID      string             `json:"item_id"`
	ItemName    string             `json:"item_name"`
	Season      seasonal.Season    `json:"season"`
	Rationale   string             `json:"rationale"`
	Breakdown   *Breakdown         `json:"breakdown"`
	Candidates  int                `json:"candidates"`
	Degraded    bool               `json:"degraded"`
}

// Engine orchestrates one suggestion run: validate the strategy, judge
// signal reliability, pick a pillar, score that pillar's candidates, and
// sample an item in proportion to its score.
type Engine struct {
	mu        sync.Mutex
	validator *strategy.Validator
	pillars   *PillarSelector
	scorer    *Scorer
	sampler   *Sampler
	tracker   *recency.Tracker
	history   HistorySink
	threshold float64
	log       zerolog.Logger
}

// NewEngine wires a selection engine. history may be nil; threshold <= 0
// falls back to the default reliability threshold.
func NewEngine(
	sampler *Sampler,
	tracker *recency.Tracker,
	history HistorySink,
	threshold float64,
	log zerolog.Logger,
) *Engine {
	if threshold <= 0 {
		threshold = catalog.DefaultReliabilityThreshold
	}
	return &Engine{
		validator: strategy.NewValidator(),
		pillars:   NewPillarSelector(sampler, log),
		scorer:    NewScorer(log),
		sampler:   sampler,
		tracker:   tracker,
		history:   history,
		threshold: threshold,
		log:       log.With().Str("module", "selection").Logger(),
	}
}

// Run produces a single suggestion. Configuration problems surface as a
// *ConfigurationError before any random draw; an exhausted candidate pool
// surfaces as ErrNoEligibleCandidates.
//
// Runs are serialized: the engine holds its mutex from the first penalty
// read through recording the pick, so concurrent callers cannot both see
// the same "not recently picked" view, and the shared rand source is only
// ever drawn from one run at a time.
func (e *Engine) Run(
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	snapshot catalog.Snapshot,
	performance *catalog.PerformanceSnapshot,
	now time.Time,
) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.validator.Validate(cfg)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, NewConfigurationError(result)
	}

	signal := catalog.NewSignal(snapshot, performance, e.threshold)
	degraded := !signal.HasReliableAvailabilityData() || !signal.HasReliablePerformanceData()
	if degraded {
		e.log.Warn().
			Bool("availability_reliable", signal.HasReliableAvailabilityData()).
			Bool("performance_reliable", signal.HasReliablePerformanceData()).
			Msg("signal data unreliable, scoring with degraded factor set")
	}

	// A pillar can come up empty after hard filtering. Exclude it and pick
	// again until a pillar yields candidates or every pillar is exhausted.
	exclude := make(map[string]bool)
	for len(exclude) < len(cfg.PillarWeights) {
		pillar, err := e.pillars.Select(cfg, seasonalCtx, e.tracker, now, exclude)
		if err != nil {
			return nil, err
		}

		breakdowns := e.scorer.Score(pillar, snapshot.Items, cfg, seasonalCtx, signal, e.tracker, now)
		if len(breakdowns) == 0 {
			e.log.Debug().Str("pillar", pillar).Msg("no eligible candidates for pillar, retrying")
			exclude[pillar] = true
			continue
		}

		itemID, err := e.sampleItem(breakdowns)
		if err != nil {
			return nil, err
		}

		return e.record(pillar, itemID, breakdowns[itemID], len(breakdowns), snapshot, seasonalCtx, degraded, now)
	}

	return nil, ErrNoEligibleCandidates
}

// SuggestN runs the engine n times in sequence. Each run records its pick
// before the next begins, so recency penalties steer later picks away from
// earlier ones. Fails fast on the first error.
func (e *Engine) SuggestN(
	n int,
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	snapshot catalog.Snapshot,
	performance *catalog.PerformanceSnapshot,
	now time.Time,
) ([]*Result, error) {
	results := make([]*Result, 0, n)
	for i := 0; i < n; i++ {
		result, err := e.Run(cfg, seasonalCtx, snapshot, performance, now)
		if err != nil {
			return nil, fmt.Errorf("suggestion %d of %d: %w", i+1, n, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// PillarDistribution reports the effective pillar probabilities for the
// given moment, normalized to sum to 1. This is what a run at `now` would
// draw its pillar from.
func (e *Engine) PillarDistribution(
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	now time.Time,
) (map[string]float64, error) {
	result, err := e.validator.Validate(cfg)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, NewConfigurationError(result)
	}

	adjusted := e.pillars.AdjustedWeights(cfg, seasonalCtx, e.tracker, now, nil)

	var total float64
	for _, weight := range adjusted {
		total += weight
	}
	if total > 0 {
		for pillar := range adjusted {
			adjusted[pillar] /= total
		}
	}

	return adjusted, nil
}

// sampleItem draws an item in proportion to its composite score. When every
// total is zero the draw falls back to a uniform distribution over the
// surviving candidates.
func (e *Engine) sampleItem(breakdowns map[string]*Breakdown) (string, error) {
	weights := make(map[string]float64, len(breakdowns))
	allZero := true
	for id, breakdown := range breakdowns {
		weights[id] = breakdown.Total
		if breakdown.Total > 0 {
			allZero = false
		}
	}

	if allZero {
		for id := range weights {
			weights[id] = 1.0
		}
	}

	return e.sampler.Sample(weights)
}

func (e *Engine) record(
	pillar, itemID string,
	breakdown *Breakdown,
	candidates int,
	snapshot catalog.Snapshot,
	seasonalCtx *seasonal.Context,
	degraded bool,
	now time.Time,
) (*Result, error) {
	var item domain.CatalogItem
	for _, candidate := range snapshot.Items {
		if candidate.ID == itemID {
			item = candidate
			break
		}
	}

	e.tracker.Record(pillar, itemID, item.Categories, now)
	if e.history != nil {
		entry := domain.SelectionHistoryEntry{
			SelectedAt: now,
			Pillar:     pillar,
			ItemID:     itemID,
			Categories: item.Categories,
		}
		if err := e.history.Append(entry); err != nil {
			return nil, fmt.Errorf("persist selection history: %w", err)
		}
	}

	result := &Result{
		RunID:       uuid.New().String(),
		GeneratedAt: now,
		Pillar:      pillar,
		ItemID:      itemID,
		ItemName:    item.Name,
		Season:      seasonalCtx.Current,
		Rationale:   e.rationale(pillar, item, seasonalCtx),
		Breakdown:   breakdown,
		Candidates:  candidates,
		Degraded:    degraded,
	}

	e.log.Info().
		Str("run_id", result.RunID).
		Str("pillar", pillar).
		Str("item_id", itemID).
		Float64("score", breakdown.Total).
		Int("candidates", candidates).
		Bool("degraded", degraded).
		Msg("suggestion generated")

	return result, nil
}

func (e *Engine) rationale(pillar string, item domain.CatalogItem, seasonalCtx *seasonal.Context) string {
	base, ok := pillarRationales[pillar]
	if !ok {
		base = "Fills a configured content pillar"
	}
	if item.Name == "" {
		return base
	}
	if seasonalCtx.InPriorityCategories(seasonalCtx.Current, item.Categories) {
		return fmt.Sprintf("%s. %s is in high demand during %s.", base, item.Name, seasonalCtx.Current)
	}
	return fmt.Sprintf("%s. Featuring %s.", base, item.Name)
}
