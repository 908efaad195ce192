package performance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// TrendPeriod is the EMA period applied to daily engagement rates
const TrendPeriod = 7

// Trend directions reported by TrendFor
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendFlat    = "flat"
)

// Trend describes the engagement trajectory of one item
type Trend struct {
	ItemID      string  `json:"item_id"`
	Direction   string  `json:"direction"`
	CurrentEMA  float64 `json:"current_ema"`
	PreviousEMA float64 `json:"previous_ema"`
	DataPoints  int     `json:"data_points"`
}

// Summary aggregates engagement across all stored measurements
type Summary struct {
	Measurements  int     `json:"measurements"`
	Items         int     `json:"items"`
	MeanRate      float64 `json:"mean_engagement_rate"`
	StdDevRate    float64 `json:"stddev_engagement_rate"`
	TotalLikes    int     `json:"total_likes"`
	TotalComments int     `json:"total_comments"`
	TotalReach    int     `json:"total_reach"`
}

// PillarBalance compares one pillar's actual share of recent selections
// against its configured weight.
type PillarBalance struct {
	Pillar         string  `json:"pillar"`
	TargetShare    float64 `json:"target_share"`
	ActualShare    float64 `json:"actual_share"`
	Selections     int     `json:"selections"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// balanceTolerance: a pillar under 80% or over 120% of its target share gets
// a recommendation.
const balanceTolerance = 0.2

// Service computes engagement analytics over stored measurements and the
// selection history.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a performance analytics service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("module", "performance").Logger(),
	}
}

// TrendFor computes the EMA trend of an item's daily engagement rate.
// Measurements on the same day are averaged before smoothing.
func (s *Service) TrendFor(itemID string) (*Trend, error) {
	records, err := s.repo.MetricsForItem(itemID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no engagement records for item %s", itemID)
	}

	rates := dailyRates(records)

	trend := &Trend{
		ItemID:     itemID,
		Direction:  TrendFlat,
		DataPoints: len(rates),
	}

	if len(rates) < 2 {
		trend.CurrentEMA = rates[len(rates)-1]
		trend.PreviousEMA = trend.CurrentEMA
		return trend, nil
	}

	var smoothed []float64
	if len(rates) < TrendPeriod {
		// Not enough history for a proper EMA, fall back to the raw series
		smoothed = rates
	} else {
		smoothed = talib.Ema(rates, TrendPeriod)
	}

	current := lastFinite(smoothed)
	previous := lastFinite(smoothed[:len(smoothed)-1])
	trend.CurrentEMA = current
	trend.PreviousEMA = previous

	switch {
	case current > previous:
		trend.Direction = TrendRising
	case current < previous:
		trend.Direction = TrendFalling
	}

	return trend, nil
}

// Summarize aggregates all measurements since the cutoff
func (s *Service) Summarize(cutoff time.Time) (*Summary, error) {
	records, err := s.repo.MetricsSince(cutoff)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Measurements: len(records)}
	if len(records) == 0 {
		return summary, nil
	}

	items := make(map[string]bool)
	rates := make([]float64, 0, len(records))
	for _, rec := range records {
		items[rec.ItemID] = true
		rates = append(rates, rec.Metrics().EngagementRate())
		summary.TotalLikes += rec.Likes
		summary.TotalComments += rec.Comments
		summary.TotalReach += rec.Reach
	}

	summary.Items = len(items)
	summary.MeanRate = stat.Mean(rates, nil)
	if len(rates) > 1 {
		summary.StdDevRate = stat.StdDev(rates, nil)
	}

	return summary, nil
}

// AnalyzeDistribution compares the pillar mix of recent selections against
// the configured pillar weights and recommends adjustments for pillars that
// drifted outside tolerance.
func (s *Service) AnalyzeDistribution(cfg *strategy.Config, history []domain.SelectionHistoryEntry) []PillarBalance {
	counts := make(map[string]int)
	for _, entry := range history {
		counts[entry.Pillar]++
	}
	total := len(history)

	pillars := cfg.Pillars()
	sort.Strings(pillars)

	balances := make([]PillarBalance, 0, len(pillars))
	for _, pillar := range pillars {
		balance := PillarBalance{
			Pillar:      pillar,
			TargetShare: cfg.PillarWeights[pillar],
			Selections:  counts[pillar],
		}
		if total > 0 {
			balance.ActualShare = float64(counts[pillar]) / float64(total)
		}

		if total > 0 && balance.TargetShare > 0 {
			ratio := balance.ActualShare / balance.TargetShare
			if ratio < 1-balanceTolerance {
				balance.Recommendation = fmt.Sprintf(
					"underrepresented: %.0f%% of selections vs %.0f%% target, plan more %s posts",
					balance.ActualShare*100, balance.TargetShare*100, pillar)
			} else if ratio > 1+balanceTolerance {
				balance.Recommendation = fmt.Sprintf(
					"overrepresented: %.0f%% of selections vs %.0f%% target, ease off %s posts",
					balance.ActualShare*100, balance.TargetShare*100, pillar)
			}
		}

		balances = append(balances, balance)
	}

	return balances
}

// dailyRates collapses measurements into one average engagement rate per
// calendar day, oldest first.
func dailyRates(records []Record) []float64 {
	type bucket struct {
		sum   float64
		count int
	}

	days := make(map[string]*bucket)
	var order []string
	for _, rec := range records {
		day := rec.MeasuredAt.Format("2006-01-02")
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
			order = append(order, day)
		}
		b.sum += rec.Metrics().EngagementRate()
		b.count++
	}
	sort.Strings(order)

	rates := make([]float64, 0, len(order))
	for _, day := range order {
		b := days[day]
		rates = append(rates, b.sum/float64(b.count))
	}
	return rates
}

// lastFinite returns the last non-NaN value in the series, or 0
func lastFinite(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return 0
}
