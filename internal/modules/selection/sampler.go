package selection

import (
	"math/rand"
	"sort"
)

// Sampler draws a single key from a weight map, proportionally to the
// weights. The random source is injected so tests can seed it; given the same
// source and weights the draw sequence is deterministic.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler over the given random source
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample partitions [0, total) by cumulative weight and returns the key whose
// partition contains a uniform draw. Keys are visited in sorted order so the
// partitioning is stable across runs.
//
// A single-candidate map is a certain pick. An empty map, any negative
// weight, or an all-zero map returns ErrInvalidDistribution: callers are
// expected to have guaranteed a non-degenerate distribution already.
func (s *Sampler) Sample(weights map[string]float64) (string, error) {
	if len(weights) == 0 {
		return "", ErrInvalidDistribution
	}

	keys := make([]string, 0, len(weights))
	total := 0.0
	for key, weight := range weights {
		if weight < 0 {
			return "", ErrInvalidDistribution
		}
		keys = append(keys, key)
		total += weight
	}
	if total <= 0 {
		return "", ErrInvalidDistribution
	}

	sort.Strings(keys)

	draw := s.rng.Float64() * total
	cumulative := 0.0
	for _, key := range keys {
		cumulative += weights[key]
		if draw < cumulative {
			return key, nil
		}
	}

	// Floating point accumulation can leave the draw a hair past the last
	// boundary; the last positive-weight key owns that edge.
	for i := len(keys) - 1; i >= 0; i-- {
		if weights[keys[i]] > 0 {
			return keys[i], nil
		}
	}

	return "", ErrInvalidDistribution
}
