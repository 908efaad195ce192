package catalog

import (
	"github.com/Monear/rental-village-social-bot/internal/domain"
)

// DefaultReliabilityThreshold is the minimum fraction of items that must
// carry a usable value before a data source is trusted.
const DefaultReliabilityThreshold = 0.5

// Signal wraps whatever catalog and performance data is currently obtainable
// behind total accessors, plus per-source reliability flags. Callers switch
// factor sets once per run on the flags instead of re-deriving "is this data
// any good" at every call site.
type Signal struct {
	items       map[string]domain.CatalogItem
	performance map[string]domain.PerformanceMetrics

	availabilityReliable bool
	performanceReliable  bool
}

// NewSignal builds a signal from a catalog snapshot and an optional
// performance snapshot. threshold <= 0 falls back to the default.
func NewSignal(snapshot Snapshot, perf *PerformanceSnapshot, threshold float64) *Signal {
	if threshold <= 0 {
		threshold = DefaultReliabilityThreshold
	}

	s := &Signal{
		items:       make(map[string]domain.CatalogItem, len(snapshot.Items)),
		performance: make(map[string]domain.PerformanceMetrics),
	}

	statusKnown := 0
	for _, item := range snapshot.Items {
		s.items[item.ID] = item
		if item.Availability != domain.AvailabilityUnknown && item.Availability != "" {
			statusKnown++
		}
	}

	total := len(snapshot.Items)
	if total > 0 && !snapshot.Stale {
		s.availabilityReliable = float64(statusKnown)/float64(total) >= threshold
	}

	if perf != nil && !perf.Stale && total > 0 {
		covered := 0
		for id, metrics := range perf.Metrics {
			s.performance[id] = metrics
			if _, ok := s.items[id]; ok {
				covered++
			}
		}
		s.performanceReliable = float64(covered)/float64(total) >= threshold
	} else if perf != nil {
		for id, metrics := range perf.Metrics {
			s.performance[id] = metrics
		}
	}

	return s
}

// HasReliableAvailabilityData reports whether availability statuses can be
// trusted for hard filtering and scoring.
func (s *Signal) HasReliableAvailabilityData() bool {
	return s.availabilityReliable
}

// HasReliablePerformanceData reports whether engagement metrics cover enough
// of the catalog to score with.
func (s *Signal) HasReliablePerformanceData() bool {
	return s.performanceReliable
}

// AvailabilityOf returns the availability status for an item. Total: unknown
// items resolve to unavailable so callers never special-case missing ids.
func (s *Signal) AvailabilityOf(itemID string) domain.AvailabilityStatus {
	item, ok := s.items[itemID]
	if !ok {
		return domain.AvailabilityUnavailable
	}
	if item.Availability == "" {
		return domain.AvailabilityUnknown
	}
	return item.Availability
}

// PerformanceOf returns the metrics for an item, or nil when none exist.
func (s *Signal) PerformanceOf(itemID string) *domain.PerformanceMetrics {
	metrics, ok := s.performance[itemID]
	if !ok {
		return nil
	}
	return &metrics
}
