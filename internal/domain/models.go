// Package domain provides core domain models and types.
package domain

import "time"

// AvailabilityStatus represents the rental availability of a catalog item
type AvailabilityStatus string

const (
	// AvailabilityAvailable - item can be rented and featured
	AvailabilityAvailable AvailabilityStatus = "available"
	// AvailabilityUnavailable - item is rented out or retired
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	// AvailabilityMaintenance - item is being serviced
	AvailabilityMaintenance AvailabilityStatus = "maintenance"
	// AvailabilityUnknown - the catalog did not report a status
	AvailabilityUnknown AvailabilityStatus = "unknown"
)

// CatalogItem represents one selectable entity from the equipment catalog.
// Optional fields are pointers: a missing popularity or margin score is a
// first-class "unknown" state, distinct from zero.
type CatalogItem struct {
	CreatedAt       time.Time          `json:"created_at"`
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Availability    AvailabilityStatus `json:"availability"`
	Categories      []string           `json:"categories"`
	PopularityScore *float64           `json:"popularity_score,omitempty"`
	MarginScore     *float64           `json:"margin_score,omitempty"`
}

// AgeDays returns the item's age in whole days at the given instant
func (c *CatalogItem) AgeDays(now time.Time) int {
	if c.CreatedAt.IsZero() || c.CreatedAt.After(now) {
		return 0
	}
	return int(now.Sub(c.CreatedAt).Hours() / 24)
}

// PerformanceMetrics holds engagement numbers for one published post/item
type PerformanceMetrics struct {
	MeasuredAt time.Time `json:"measured_at"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Reach      int       `json:"reach"`
}

// EngagementRate returns interactions per person reached, 0 when reach is unknown
func (p PerformanceMetrics) EngagementRate() float64 {
	if p.Reach <= 0 {
		return 0
	}
	return float64(p.Likes+p.Comments) / float64(p.Reach)
}

// SelectionHistoryEntry records one (pillar, item) selection made by the engine
type SelectionHistoryEntry struct {
	SelectedAt time.Time `json:"selected_at"`
	Pillar     string    `json:"pillar"`
	ItemID     string    `json:"item_id"`
	Categories []string  `json:"categories"`
}
