// Package seasonal provides the seasonal context used to boost or dampen
// content pillars and catalog items.
package seasonal

import (
	"strings"
	"time"
)

// Season identifies one of the four seasons
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// SeasonFor returns the northern-hemisphere season for the given instant
func SeasonFor(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// Next returns the season that follows
func (s Season) Next() Season {
	switch s {
	case SeasonSpring:
		return SeasonSummer
	case SeasonSummer:
		return SeasonFall
	case SeasonFall:
		return SeasonWinter
	default:
		return SeasonSpring
	}
}

// Affinity classifies how a set of tokens relates to the seasonal context
type Affinity int

const (
	// AffinityNone - no seasonal signal at all; treated as neutral
	AffinityNone Affinity = iota
	// AffinityCurrent - matches the season that is happening now
	AffinityCurrent
	// AffinityUpcoming - matches the season about to start
	AffinityUpcoming
	// AffinityOff - matches only a past or opposite season
	AffinityOff
)

// Context is the active seasonal configuration. Refreshed at most daily by the
// settings provider; read-only during a run.
type Context struct {
	Current Season `json:"current_season"`

	// Multipliers applied to pillar/item weights by affinity
	CurrentSeasonBoost  float64 `json:"current_season_boost"`  // >= 1
	UpcomingSeasonBoost float64 `json:"upcoming_season_boost"` // >= 1
	OffSeasonPenalty    float64 `json:"off_season_penalty"`    // in (0,1]

	Keywords           map[Season][]string `json:"keywords"`
	PriorityCategories map[Season][]string `json:"priority_categories"`
	Themes             map[Season][]string `json:"themes"`
}

// Affinity classifies the given tokens (pillar name words, item categories)
// against the seasonal tables. Current season wins over upcoming, upcoming
// over off-season; tokens that match no season at all are neutral.
func (c *Context) Affinity(tokens []string) Affinity {
	if len(tokens) == 0 {
		return AffinityNone
	}

	if c.matchesSeason(c.Current, tokens) {
		return AffinityCurrent
	}
	if c.matchesSeason(c.Current.Next(), tokens) {
		return AffinityUpcoming
	}

	for _, season := range []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter} {
		if season == c.Current || season == c.Current.Next() {
			continue
		}
		if c.matchesSeason(season, tokens) {
			return AffinityOff
		}
	}

	return AffinityNone
}

// Multiplier returns the weight multiplier for the given affinity
func (c *Context) Multiplier(a Affinity) float64 {
	switch a {
	case AffinityCurrent:
		return c.CurrentSeasonBoost
	case AffinityUpcoming:
		return c.UpcomingSeasonBoost
	case AffinityOff:
		return c.OffSeasonPenalty
	default:
		return 1.0
	}
}

// InPriorityCategories reports whether any of the categories is a priority
// category for the given season.
func (c *Context) InPriorityCategories(season Season, categories []string) bool {
	priorities := c.PriorityCategories[season]
	for _, category := range categories {
		for _, priority := range priorities {
			if strings.EqualFold(strings.TrimSpace(category), priority) {
				return true
			}
		}
	}
	return false
}

func (c *Context) matchesSeason(season Season, tokens []string) bool {
	terms := make([]string, 0, len(c.Keywords[season])+len(c.PriorityCategories[season]))
	terms = append(terms, c.Keywords[season]...)
	terms = append(terms, c.PriorityCategories[season]...)

	for _, token := range tokens {
		normalized := strings.ToLower(strings.TrimSpace(token))
		if normalized == "" {
			continue
		}
		for _, term := range terms {
			if normalized == strings.ToLower(term) {
				return true
			}
		}
	}
	return false
}

// DefaultContext returns the stock seasonal settings for the given instant.
// Tables mirror the production defaults.
func DefaultContext(now time.Time) *Context {
	return &Context{
		Current:             SeasonFor(now),
		CurrentSeasonBoost:  2.0,
		UpcomingSeasonBoost: 1.5,
		OffSeasonPenalty:    0.3,
		Keywords: map[Season][]string{
			SeasonSpring: {"spring", "landscaping", "gardening", "planting", "cleanup", "preparation"},
			SeasonSummer: {"summer", "construction", "outdoor", "hot weather", "irrigation", "maintenance"},
			SeasonFall:   {"fall", "autumn", "harvest", "leaf removal", "winterizing"},
			SeasonWinter: {"winter", "snow", "cold", "ice", "heating", "indoor projects"},
		},
		PriorityCategories: map[Season][]string{
			SeasonSpring: {"landscaping", "excavation", "lawn-care", "compaction", "material-handling"},
			SeasonSummer: {"construction", "concrete", "demolition", "pumps", "generators"},
			SeasonFall:   {"leaf-blowers", "chippers", "excavation", "landscaping", "cleanup"},
			SeasonWinter: {"snow-removal", "heaters", "indoor-tools", "pumps", "generators"},
		},
		Themes: map[Season][]string{
			SeasonSpring: {"Spring Preparation", "Landscaping Projects", "Clean-up Time", "Garden Ready"},
			SeasonSummer: {"Summer Projects", "Beat the Heat", "Outdoor Work", "Construction Season"},
			SeasonFall:   {"Fall Cleanup", "Harvest Time", "Winter Prep", "Leaf Season"},
			SeasonWinter: {"Winter Solutions", "Snow Management", "Indoor Projects", "Cold Weather Tools"},
		},
	}
}
