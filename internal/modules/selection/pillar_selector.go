package selection

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/modules/recency"
	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// PillarSelector chooses the content pillar for a run from the configured
// weight distribution, adjusted by seasonal boosts and pillar-level recency
// penalties.
type PillarSelector struct {
	sampler *Sampler
	log     zerolog.Logger
}

// NewPillarSelector creates a pillar selector drawing from the given sampler
func NewPillarSelector(sampler *Sampler, log zerolog.Logger) *PillarSelector {
	return &PillarSelector{
		sampler: sampler,
		log:     log.With().Str("component", "pillar_selector").Logger(),
	}
}

// Select draws one pillar. Pillars in the exclude set (already exhausted
// during this run) are skipped entirely. The adjusted weights are the
// configured ones multiplied by the seasonal affinity multiplier and the
// pillar-level recency penalty; if every adjusted weight collapses to zero
// the selector falls back to the unmodified configured weights rather than
// sampling a zero-probability-everywhere distribution.
func (ps *PillarSelector) Select(
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	tracker *recency.Tracker,
	now time.Time,
	exclude map[string]bool,
) (string, error) {
	adjusted := ps.AdjustedWeights(cfg, seasonalCtx, tracker, now, exclude)

	pillar, err := ps.sampler.Sample(adjusted)
	if err != nil {
		return "", err
	}

	ps.log.Debug().Str("pillar", pillar).Msg("Selected pillar")

	return pillar, nil
}

// AdjustedWeights computes the effective pillar weights for the given moment:
// configured weight times seasonal multiplier times recency penalty. If every
// adjusted weight collapses to zero the configured weights are returned so a
// pillar can still run.
func (ps *PillarSelector) AdjustedWeights(
	cfg *strategy.Config,
	seasonalCtx *seasonal.Context,
	tracker *recency.Tracker,
	now time.Time,
	exclude map[string]bool,
) map[string]float64 {
	adjusted := make(map[string]float64, len(cfg.PillarWeights))
	allZero := true

	for pillar, weight := range cfg.PillarWeights {
		if exclude[pillar] {
			continue
		}

		affinity := seasonalCtx.Affinity(cfg.PillarAffinities[pillar])
		weight *= seasonalCtx.Multiplier(affinity)
		weight *= tracker.PenaltyFor(pillar, "", now)

		adjusted[pillar] = weight
		if weight > 0 {
			allZero = false
		}
	}

	if allZero {
		// Every candidate pillar ran very recently (or was fully dampened).
		// Fall back to the configured distribution so a pillar can still run.
		ps.log.Debug().Msg("Adjusted pillar weights collapsed to zero, using configured weights")
		for pillar := range adjusted {
			adjusted[pillar] = cfg.PillarWeights[pillar]
		}
	}

	return adjusted
}
