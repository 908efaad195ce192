// Package strategy provides content strategy configuration and validation.
package strategy

// SelectionRules holds the operator-tunable flags and thresholds that shape
// catalog item selection.
type SelectionRules struct {
	PrioritizeNew           bool `json:"prioritize_new"`
	PrioritizeUnderutilized bool `json:"prioritize_underutilized"`
	PrioritizeHighMargin    bool `json:"prioritize_high_margin"`
	ExcludeUnavailable      bool `json:"exclude_unavailable"`
	// MaxItemAgeDays removes items older than this from candidates (0 = no limit)
	MaxItemAgeDays int `json:"max_item_age_days"`
}

// Config is a content strategy configuration. It is loaded once per run-batch,
// validated at load time and never mutated afterwards.
type Config struct {
	Title string `json:"title"`
	// PillarWeights maps pillar name to selection probability; must sum to ~1.0
	PillarWeights map[string]float64 `json:"pillar_weights"`
	// PlatformDistribution maps platform name to target percentage; must sum to ~100
	PlatformDistribution map[string]float64 `json:"platform_distribution"`
	// PillarAffinities maps pillar name to the keyword/category tokens used
	// for seasonal boosting. Pillars without an affinity list stay neutral.
	PillarAffinities map[string][]string `json:"pillar_affinities,omitempty"`
	SelectionRules   SelectionRules      `json:"selection_rules"`
}

// Pillars returns the configured pillar names
func (c *Config) Pillars() []string {
	pillars := make([]string, 0, len(c.PillarWeights))
	for pillar := range c.PillarWeights {
		pillars = append(pillars, pillar)
	}
	return pillars
}

// DefaultConfig returns the stock strategy used when no operator configuration
// is active. Weights mirror the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Title: "Default Content Strategy",
		PillarWeights: map[string]float64{
			"equipment_spotlight": 0.30,
			"seasonal_content":    0.25,
			"project_showcase":    0.20,
			"safety_training":     0.15,
			"educational_content": 0.10,
		},
		PlatformDistribution: map[string]float64{
			"facebook":  40,
			"instagram": 35,
			"blog":      25,
		},
		PillarAffinities: map[string][]string{
			// Always in season: matches every season's keyword table
			"seasonal_content": {"spring", "summer", "fall", "winter"},
			// Leans on the construction-heavy summer tables
			"project_showcase": {"construction", "outdoor"},
		},
		SelectionRules: SelectionRules{
			PrioritizeNew:           true,
			PrioritizeUnderutilized: true,
			PrioritizeHighMargin:    false,
			ExcludeUnavailable:      true,
			MaxItemAgeDays:          365,
		},
	}
}
