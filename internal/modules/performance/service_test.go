package performance

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	repo := newMetricsRepo(t)
	return NewService(repo, zerolog.New(nil).Level(zerolog.Disabled)), repo
}

func seedDailyMetrics(t *testing.T, repo *Repository, itemID string, likesPerDay []int) {
	t.Helper()
	now := time.Now().UTC()
	for i, likes := range likesPerDay {
		daysAgo := len(likesPerDay) - 1 - i
		require.NoError(t, repo.Record(Record{
			ItemID:     itemID,
			Platform:   "facebook",
			Likes:      likes,
			Reach:      1000,
			MeasuredAt: now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		}))
	}
}

func TestService_TrendRising(t *testing.T) {
	service, repo := newTestService(t)
	seedDailyMetrics(t, repo, "excavator", []int{10, 12, 15, 18, 22, 27, 33, 40, 48, 57, 67, 78, 90, 103})

	trend, err := service.TrendFor("excavator")
	require.NoError(t, err)

	assert.Equal(t, TrendRising, trend.Direction)
	assert.Greater(t, trend.CurrentEMA, trend.PreviousEMA)
	assert.Equal(t, 14, trend.DataPoints)
}

func TestService_TrendFalling(t *testing.T) {
	service, repo := newTestService(t)
	seedDailyMetrics(t, repo, "generator", []int{100, 90, 80, 70, 60, 50, 40, 30, 20, 10})

	trend, err := service.TrendFor("generator")
	require.NoError(t, err)

	assert.Equal(t, TrendFalling, trend.Direction)
	assert.Less(t, trend.CurrentEMA, trend.PreviousEMA)
}

func TestService_TrendShortSeriesFallsBackToRawRates(t *testing.T) {
	service, repo := newTestService(t)
	seedDailyMetrics(t, repo, "ladder", []int{10, 20, 30})

	trend, err := service.TrendFor("ladder")
	require.NoError(t, err)

	assert.Equal(t, TrendRising, trend.Direction)
	assert.Equal(t, 3, trend.DataPoints)
}

func TestService_TrendUnknownItem(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.TrendFor("missing")
	assert.Error(t, err)
}

func TestService_Summarize(t *testing.T) {
	service, repo := newTestService(t)
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Record(Record{
			ItemID:     fmt.Sprintf("item-%d", i%2),
			Platform:   "facebook",
			Likes:      10 * (i + 1),
			Comments:   i,
			Reach:      1000,
			MeasuredAt: now.Add(-time.Duration(i) * time.Hour),
		}))
	}

	summary, err := service.Summarize(now.AddDate(0, 0, -30))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Measurements)
	assert.Equal(t, 2, summary.Items)
	assert.Equal(t, 100, summary.TotalLikes)
	assert.Equal(t, 6, summary.TotalComments)
	assert.Equal(t, 4000, summary.TotalReach)
	assert.Greater(t, summary.MeanRate, 0.0)
	assert.Greater(t, summary.StdDevRate, 0.0)
}

func TestService_SummarizeEmpty(t *testing.T) {
	service, _ := newTestService(t)

	summary, err := service.Summarize(time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Measurements)
	assert.Equal(t, 0.0, summary.MeanRate)
}

func TestService_AnalyzeDistribution(t *testing.T) {
	service, _ := newTestService(t)

	cfg := &strategy.Config{
		PillarWeights: map[string]float64{
			"equipment_spotlight": 0.5,
			"safety_training":     0.5,
		},
	}

	var history []domain.SelectionHistoryEntry
	for i := 0; i < 9; i++ {
		history = append(history, domain.SelectionHistoryEntry{Pillar: "equipment_spotlight"})
	}
	history = append(history, domain.SelectionHistoryEntry{Pillar: "safety_training"})

	balances := service.AnalyzeDistribution(cfg, history)
	require.Len(t, balances, 2)

	byPillar := map[string]PillarBalance{}
	for _, b := range balances {
		byPillar[b.Pillar] = b
	}

	spotlight := byPillar["equipment_spotlight"]
	assert.InDelta(t, 0.9, spotlight.ActualShare, 1e-9)
	assert.Contains(t, spotlight.Recommendation, "overrepresented")

	safety := byPillar["safety_training"]
	assert.InDelta(t, 0.1, safety.ActualShare, 1e-9)
	assert.Contains(t, safety.Recommendation, "underrepresented")
}

func TestService_AnalyzeDistributionEmptyHistory(t *testing.T) {
	service, _ := newTestService(t)

	balances := service.AnalyzeDistribution(strategy.DefaultConfig(), nil)
	require.Len(t, balances, 5)
	for _, b := range balances {
		assert.Empty(t, b.Recommendation, b.Pillar)
		assert.Zero(t, b.Selections)
	}
}
