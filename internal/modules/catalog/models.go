// Package catalog provides access to the equipment catalog snapshot and the
// availability/performance signal derived from it.
package catalog

import (
	"time"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

// Snapshot is a point-in-time view of the external catalog. The engine only
// reads snapshots; the out-of-scope sync collaborator owns freshness.
type Snapshot struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Items     []domain.CatalogItem `json:"items"`
	// Stale is set by the collaborator when the upstream fetch failed and
	// cached data was served instead.
	Stale bool `json:"stale"`
}

// PerformanceSnapshot is a point-in-time view of engagement metrics per item.
// It may be absent entirely; the scoring layer degrades instead of failing.
type PerformanceSnapshot struct {
	FetchedAt time.Time                            `json:"fetched_at"`
	Metrics   map[string]domain.PerformanceMetrics `json:"metrics"`
	Stale     bool                                 `json:"stale"`
}
