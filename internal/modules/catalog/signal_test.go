package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

func makeItem(id string, status domain.AvailabilityStatus) domain.CatalogItem {
	return domain.CatalogItem{
		ID:           id,
		Name:         "Item " + id,
		Availability: status,
		CreatedAt:    time.Now().Add(-48 * time.Hour),
	}
}

func TestSignal_AvailabilityReliability(t *testing.T) {
	tests := []struct {
		name     string
		items    []domain.CatalogItem
		stale    bool
		reliable bool
	}{
		{
			name: "all statuses known",
			items: []domain.CatalogItem{
				makeItem("a", domain.AvailabilityAvailable),
				makeItem("b", domain.AvailabilityMaintenance),
			},
			reliable: true,
		},
		{
			name: "half known meets threshold",
			items: []domain.CatalogItem{
				makeItem("a", domain.AvailabilityAvailable),
				makeItem("b", domain.AvailabilityUnknown),
			},
			reliable: true,
		},
		{
			name: "mostly unknown",
			items: []domain.CatalogItem{
				makeItem("a", domain.AvailabilityAvailable),
				makeItem("b", domain.AvailabilityUnknown),
				makeItem("c", domain.AvailabilityUnknown),
			},
			reliable: false,
		},
		{
			name: "stale snapshot is never reliable",
			items: []domain.CatalogItem{
				makeItem("a", domain.AvailabilityAvailable),
			},
			stale:    true,
			reliable: false,
		},
		{
			name:     "empty snapshot",
			items:    nil,
			reliable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := NewSignal(Snapshot{Items: tt.items, Stale: tt.stale}, nil, 0)
			assert.Equal(t, tt.reliable, signal.HasReliableAvailabilityData())
		})
	}
}

func TestSignal_PerformanceReliability(t *testing.T) {
	items := []domain.CatalogItem{
		makeItem("a", domain.AvailabilityAvailable),
		makeItem("b", domain.AvailabilityAvailable),
	}

	t.Run("no performance snapshot", func(t *testing.T) {
		signal := NewSignal(Snapshot{Items: items}, nil, 0)
		assert.False(t, signal.HasReliablePerformanceData())
	})

	t.Run("full coverage", func(t *testing.T) {
		perf := &PerformanceSnapshot{Metrics: map[string]domain.PerformanceMetrics{
			"a": {Likes: 10, Comments: 2, Reach: 500},
			"b": {Likes: 5, Comments: 1, Reach: 300},
		}}
		signal := NewSignal(Snapshot{Items: items}, perf, 0)
		assert.True(t, signal.HasReliablePerformanceData())
	})

	t.Run("sparse coverage", func(t *testing.T) {
		perf := &PerformanceSnapshot{Metrics: map[string]domain.PerformanceMetrics{
			"a": {Likes: 10, Comments: 2, Reach: 500},
		}}
		signal := NewSignal(Snapshot{Items: append(items, makeItem("c", domain.AvailabilityAvailable))}, perf, 0)
		assert.False(t, signal.HasReliablePerformanceData())
	})

	t.Run("stale performance snapshot", func(t *testing.T) {
		perf := &PerformanceSnapshot{
			Stale: true,
			Metrics: map[string]domain.PerformanceMetrics{
				"a": {Likes: 10, Comments: 2, Reach: 500},
				"b": {Likes: 5, Comments: 1, Reach: 300},
			},
		}
		signal := NewSignal(Snapshot{Items: items}, perf, 0)
		assert.False(t, signal.HasReliablePerformanceData())
		// Metrics are still readable: degraded, not discarded
		assert.NotNil(t, signal.PerformanceOf("a"))
	})

	t.Run("custom threshold", func(t *testing.T) {
		perf := &PerformanceSnapshot{Metrics: map[string]domain.PerformanceMetrics{
			"a": {Likes: 10, Comments: 2, Reach: 500},
		}}
		signal := NewSignal(Snapshot{Items: items}, perf, 0.4)
		assert.True(t, signal.HasReliablePerformanceData())
	})
}

func TestSignal_TotalAccessors(t *testing.T) {
	signal := NewSignal(Snapshot{Items: []domain.CatalogItem{
		makeItem("a", domain.AvailabilityAvailable),
		{ID: "blank"},
	}}, nil, 0)

	assert.Equal(t, domain.AvailabilityAvailable, signal.AvailabilityOf("a"))
	assert.Equal(t, domain.AvailabilityUnknown, signal.AvailabilityOf("blank"))
	// Unknown ids resolve to unavailable, never an error
	assert.Equal(t, domain.AvailabilityUnavailable, signal.AvailabilityOf("missing"))
	assert.Nil(t, signal.PerformanceOf("missing"))
}
