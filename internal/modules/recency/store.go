// Package recency tracks prior selections and converts "how recently was this
// picked" into a score penalty that discourages repetition.
package recency

import (
	"sort"
	"sync"
	"time"

	"github.com/Monear/rental-village-social-bot/internal/domain"
)

const (
	// DefaultWindow is the lookback over which a prior selection still matters
	DefaultWindow = 30 * 24 * time.Hour
	// DefaultMaxEntries caps history size; an unbounded history would flatten
	// all penalties toward zero as it dilutes
	DefaultMaxEntries = 500
)

// Tracker maintains a bounded selection history and computes recency
// penalties. Pillar-level and item-level penalties are independent: a pillar
// is penalized for having run recently even when the specific item was not
// previously chosen, and vice versa.
//
// All methods are safe for concurrent use; the engine additionally serializes
// whole selections so two concurrent runs cannot both see the same "not
// recently picked" view.
type Tracker struct {
	mu         sync.Mutex
	entries    []domain.SelectionHistoryEntry
	window     time.Duration
	maxEntries int
}

// NewTracker creates a tracker with the default window and cap
func NewTracker() *Tracker {
	return &Tracker{
		window:     DefaultWindow,
		maxEntries: DefaultMaxEntries,
	}
}

// NewTrackerWithWindow creates a tracker with a custom lookback window
func NewTrackerWithWindow(window time.Duration, maxEntries int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Tracker{
		window:     window,
		maxEntries: maxEntries,
	}
}

// PenaltyFor returns a multiplier in [0,1] for the candidate. 1.0 means never
// selected within the window (no discouragement); values near 0 mean selected
// moments ago (strongly discouraged). An empty itemID queries the pillar
// level: any entry under the pillar counts regardless of item.
//
// The decay is linear in the age of the most recent matching entry: penalty =
// age/window, clamped to [0,1]. Monotonically non-decreasing as the last
// selection recedes into the past.
func (t *Tracker) PenaltyFor(pillar, itemID string, now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var lastSeen time.Time
	for _, entry := range t.entries {
		if entry.Pillar != pillar {
			continue
		}
		if itemID != "" && entry.ItemID != itemID {
			continue
		}
		if entry.SelectedAt.After(lastSeen) {
			lastSeen = entry.SelectedAt
		}
	}

	if lastSeen.IsZero() {
		return 1.0
	}

	age := now.Sub(lastSeen)
	if age < 0 {
		age = 0
	}
	if age >= t.window {
		return 1.0
	}

	return float64(age) / float64(t.window)
}

// Record appends a selection and evicts entries outside the retention window
func (t *Tracker) Record(pillar, itemID string, categories []string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, domain.SelectionHistoryEntry{
		Pillar:     pillar,
		ItemID:     itemID,
		Categories: append([]string(nil), categories...),
		SelectedAt: now,
	})

	t.evict(now)
}

// CategoryCounts returns how often each category appeared in the window.
// Used by the degraded factor set's diversity factor.
func (t *Tracker) CategoryCounts(now time.Time) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-t.window)
	counts := make(map[string]int)
	for _, entry := range t.entries {
		if entry.SelectedAt.Before(cutoff) {
			continue
		}
		for _, category := range entry.Categories {
			counts[category]++
		}
	}

	return counts
}

// Snapshot returns a copy of the current history, oldest first
func (t *Tracker) Snapshot() []domain.SelectionHistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]domain.SelectionHistoryEntry, len(t.entries))
	copy(snapshot, t.entries)
	return snapshot
}

// Restore replaces the history with the given entries (e.g., loaded from the
// repository at startup), evicting anything already outside the window.
func (t *Tracker) Restore(entries []domain.SelectionHistoryEntry, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make([]domain.SelectionHistoryEntry, len(entries))
	copy(t.entries, entries)
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].SelectedAt.Before(t.entries[j].SelectedAt)
	})
	t.evict(now)
}

// Len returns the number of retained entries
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// evict drops entries older than the window, then enforces the cap by
// dropping the oldest. Caller must hold the lock.
func (t *Tracker) evict(now time.Time) {
	cutoff := now.Add(-t.window)

	kept := t.entries[:0]
	for _, entry := range t.entries {
		if !entry.SelectedAt.Before(cutoff) {
			kept = append(kept, entry)
		}
	}
	t.entries = kept

	if over := len(t.entries) - t.maxEntries; over > 0 {
		t.entries = append(t.entries[:0], t.entries[over:]...)
	}
}
