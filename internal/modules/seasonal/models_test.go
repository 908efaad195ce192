package seasonal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected Season
	}{
		{time.January, SeasonWinter},
		{time.March, SeasonSpring},
		{time.May, SeasonSpring},
		{time.July, SeasonSummer},
		{time.October, SeasonFall},
		{time.December, SeasonWinter},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected)+"/"+tt.month.String(), func(t *testing.T) {
			instant := time.Date(2024, tt.month, 15, 12, 0, 0, 0, time.UTC)
			assert.Equal(t, tt.expected, SeasonFor(instant))
		})
	}
}

func TestSeason_Next(t *testing.T) {
	assert.Equal(t, SeasonSummer, SeasonSpring.Next())
	assert.Equal(t, SeasonFall, SeasonSummer.Next())
	assert.Equal(t, SeasonWinter, SeasonFall.Next())
	assert.Equal(t, SeasonSpring, SeasonWinter.Next())
}

func TestContext_Affinity(t *testing.T) {
	// Summer context: upcoming is fall
	ctx := DefaultContext(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		tokens   []string
		expected Affinity
	}{
		{"current season keyword", []string{"construction"}, AffinityCurrent},
		{"current season category", []string{"concrete"}, AffinityCurrent},
		{"upcoming season category", []string{"chippers"}, AffinityUpcoming},
		{"off season keyword", []string{"snow"}, AffinityOff},
		{"no seasonal signal", []string{"forklift"}, AffinityNone},
		{"current wins over off", []string{"snow", "construction"}, AffinityCurrent},
		{"case insensitive", []string{"Construction"}, AffinityCurrent},
		{"empty tokens", nil, AffinityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ctx.Affinity(tt.tokens))
		})
	}
}

func TestContext_Multiplier(t *testing.T) {
	ctx := DefaultContext(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2.0, ctx.Multiplier(AffinityCurrent))
	assert.Equal(t, 1.5, ctx.Multiplier(AffinityUpcoming))
	assert.Equal(t, 0.3, ctx.Multiplier(AffinityOff))
	assert.Equal(t, 1.0, ctx.Multiplier(AffinityNone))
}

func TestContext_InPriorityCategories(t *testing.T) {
	ctx := DefaultContext(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, ctx.InPriorityCategories(SeasonSummer, []string{"pumps"}))
	assert.True(t, ctx.InPriorityCategories(SeasonSummer, []string{" Pumps "}))
	assert.False(t, ctx.InPriorityCategories(SeasonSummer, []string{"chippers"}))
	assert.False(t, ctx.InPriorityCategories(SeasonSummer, nil))
}
