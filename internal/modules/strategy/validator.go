package strategy

import (
	"fmt"
	"math"
)

const (
	// pillarWeightTolerance is the allowed drift of pillar weights around 1.0
	pillarWeightTolerance = 0.01
	// platformSumTolerance is the allowed drift of platform percentages around 100
	platformSumTolerance = 1.0
)

// ValidationResult carries the outcome of validating a strategy configuration.
// An invalid configuration is data, not an error: the caller decides whether
// to stop the run-batch or fall back to another configuration.
type ValidationResult struct {
	Violations []string `json:"violations"`
	Valid      bool     `json:"valid"`
}

// Validator checks strategy configurations before they are used for selection.
// It is pure: it never mutates the configuration and reserves error returns
// for unrecoverable misuse (a missing configuration object).
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks pillar weights, platform distribution and selection rules.
// All problems found are reported together so the operator can fix the
// document in one pass.
func (v *Validator) Validate(cfg *Config) (ValidationResult, error) {
	if cfg == nil {
		return ValidationResult{}, fmt.Errorf("strategy config is nil")
	}

	var violations []string

	violations = append(violations, v.checkPillarWeights(cfg.PillarWeights)...)
	violations = append(violations, v.checkPlatformDistribution(cfg.PlatformDistribution)...)

	if cfg.SelectionRules.MaxItemAgeDays < 0 {
		violations = append(violations, fmt.Sprintf(
			"selection_rules: max_item_age_days must be >= 0, got %d",
			cfg.SelectionRules.MaxItemAgeDays))
	}

	return ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}, nil
}

func (v *Validator) checkPillarWeights(weights map[string]float64) []string {
	var violations []string

	if len(weights) == 0 {
		return append(violations, "pillar_weights: no pillars configured")
	}

	sum := 0.0
	for pillar, weight := range weights {
		if weight < 0 || weight > 1 {
			violations = append(violations, fmt.Sprintf(
				"pillar_weights: weight for %q must be in [0,1], got %.4f", pillar, weight))
		}
		sum += weight
	}

	if math.Abs(sum-1.0) > pillarWeightTolerance {
		violations = append(violations, fmt.Sprintf(
			"pillar_weights: weights must sum to 1.0 (±%.2f), got %.4f",
			pillarWeightTolerance, sum))
	}

	return violations
}

func (v *Validator) checkPlatformDistribution(distribution map[string]float64) []string {
	var violations []string

	// An empty platform distribution is allowed: platform targeting is a
	// downstream concern and some strategies only steer pillars.
	if len(distribution) == 0 {
		return violations
	}

	sum := 0.0
	for platform, share := range distribution {
		if share < 0 || share > 100 {
			violations = append(violations, fmt.Sprintf(
				"platform_distribution: share for %q must be in [0,100], got %.2f", platform, share))
		}
		sum += share
	}

	if math.Abs(sum-100) > platformSumTolerance {
		violations = append(violations, fmt.Sprintf(
			"platform_distribution: shares must sum to 100 (±%.0f), got %.2f",
			platformSumTolerance, sum))
	}

	return violations
}
