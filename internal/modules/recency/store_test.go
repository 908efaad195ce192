package recency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

var baseTime = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

func TestTracker_PenaltyBeforeAnyRecord(t *testing.T) {
	tracker := NewTracker()

	assert.Equal(t, 1.0, tracker.PenaltyFor("spotlight", "item-7", baseTime))
	assert.Equal(t, 1.0, tracker.PenaltyFor("spotlight", "", baseTime))
}

func TestTracker_PenaltyDropsAfterRecord(t *testing.T) {
	tracker := NewTracker()

	tracker.Record("spotlight", "item-7", nil, baseTime)

	penalty := tracker.PenaltyFor("spotlight", "item-7", baseTime)
	assert.InDelta(t, 0.0, penalty, 1e-9, "immediately after selection the penalty is ~0")
}

func TestTracker_PenaltyRecoversOverTime(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "item-7", nil, baseTime)

	var previous float64 = -1
	for _, age := range []time.Duration{
		time.Hour,
		24 * time.Hour,
		10 * 24 * time.Hour,
		20 * 24 * time.Hour,
		29 * 24 * time.Hour,
	} {
		penalty := tracker.PenaltyFor("spotlight", "item-7", baseTime.Add(age))
		assert.GreaterOrEqual(t, penalty, previous, "penalty must be monotone in age")
		assert.Less(t, penalty, 1.0)
		previous = penalty
	}

	// Past the window the item is fully recovered
	assert.Equal(t, 1.0, tracker.PenaltyFor("spotlight", "item-7", baseTime.Add(31*24*time.Hour)))
}

func TestTracker_PillarAndItemLevelsAreIndependent(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "item-7", nil, baseTime)

	now := baseTime.Add(time.Minute)

	// The pillar just ran, so the pillar-level penalty is active even for
	// queries about other items
	assert.InDelta(t, 0.0, tracker.PenaltyFor("spotlight", "", now), 1e-4)
	// A different item under the same pillar carries no item-level penalty
	assert.Equal(t, 1.0, tracker.PenaltyFor("spotlight", "item-8", now))
	// A different pillar is untouched
	assert.Equal(t, 1.0, tracker.PenaltyFor("safety", "", now))
}

func TestTracker_MostRecentEntryWins(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "item-7", nil, baseTime.Add(-20*24*time.Hour))
	tracker.Record("spotlight", "item-7", nil, baseTime)

	penalty := tracker.PenaltyFor("spotlight", "item-7", baseTime.Add(time.Hour))
	assert.Less(t, penalty, 0.01, "the newer selection dominates")
}

func TestTracker_EvictsOutsideWindow(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "old", nil, baseTime.Add(-40*24*time.Hour))
	tracker.Record("spotlight", "new", nil, baseTime)

	assert.Equal(t, 1, tracker.Len())
	assert.Equal(t, 1.0, tracker.PenaltyFor("spotlight", "old", baseTime))
}

func TestTracker_EnforcesEntryCap(t *testing.T) {
	tracker := NewTrackerWithWindow(DefaultWindow, 10)

	for i := 0; i < 25; i++ {
		tracker.Record("spotlight", "item", nil, baseTime.Add(time.Duration(i)*time.Minute))
	}

	assert.Equal(t, 10, tracker.Len())
}

func TestTracker_CategoryCounts(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "a", []string{"excavation", "landscaping"}, baseTime)
	tracker.Record("seasonal", "b", []string{"landscaping"}, baseTime.Add(time.Hour))
	tracker.Record("spotlight", "c", []string{"concrete"}, baseTime.Add(-40*24*time.Hour))

	counts := tracker.CategoryCounts(baseTime.Add(2 * time.Hour))

	assert.Equal(t, 2, counts["landscaping"])
	assert.Equal(t, 1, counts["excavation"])
	assert.Zero(t, counts["concrete"], "entries outside the window do not count")
}

func TestTracker_SnapshotRestoreRoundTrip(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("spotlight", "item-7", []string{"excavation"}, baseTime.Add(-time.Hour))
	tracker.Record("safety", "item-9", nil, baseTime)

	now := baseTime.Add(time.Minute)
	before7 := tracker.PenaltyFor("spotlight", "item-7", now)
	before9 := tracker.PenaltyFor("safety", "item-9", now)

	restored := NewTracker()
	restored.Restore(tracker.Snapshot(), now)

	assert.Equal(t, before7, restored.PenaltyFor("spotlight", "item-7", now))
	assert.Equal(t, before9, restored.PenaltyFor("safety", "item-9", now))
	assert.Equal(t, tracker.Len(), restored.Len())
}

func TestTracker_RestoreSortsEntries(t *testing.T) {
	tracker := NewTracker()
	tracker.Restore([]domain.SelectionHistoryEntry{
		{Pillar: "spotlight", ItemID: "b", SelectedAt: baseTime},
		{Pillar: "spotlight", ItemID: "a", SelectedAt: baseTime.Add(-time.Hour)},
	}, baseTime)

	entries := tracker.Snapshot()
	assert.Equal(t, "a", entries[0].ItemID)
	assert.Equal(t, "b", entries[1].ItemID)
}
