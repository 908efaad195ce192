package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monear/rental-village-social-bot/internal/events"
	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
)

type stubSuggestionService struct {
	results []*selection.Result
	err     error
	calls   int
	lastN   int
}

func (s *stubSuggestionService) Suggest(n int, now time.Time) ([]*selection.Result, error) {
	s.calls++
	s.lastN = n
	return s.results, s.err
}

func disabledLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestDailySuggestionJob_PublishesResults(t *testing.T) {
	bus := events.NewBus(disabledLogger())

	var published []*events.Event
	bus.Subscribe(events.SuggestionGenerated, func(event *events.Event) {
		published = append(published, event)
	})

	service := &stubSuggestionService{
		results: []*selection.Result{
			{RunID: "a", Pillar: "equipment_spotlight", ItemID: "excavator", Breakdown: &selection.Breakdown{Total: 0.7}},
			{RunID: "b", Pillar: "safety_training", ItemID: "generator", Breakdown: &selection.Breakdown{Total: 0.5}},
		},
	}

	job := NewDailySuggestionJob(service, bus, 2, disabledLogger())
	require.NoError(t, job.Run())

	assert.Equal(t, 1, service.calls)
	assert.Equal(t, 2, service.lastN)
	require.Len(t, published, 2)
	assert.Equal(t, "excavator", published[0].Data["item_id"])
}

func TestDailySuggestionJob_PublishesErrors(t *testing.T) {
	bus := events.NewBus(disabledLogger())

	var errorEvents []*events.Event
	bus.Subscribe(events.ErrorOccurred, func(event *events.Event) {
		errorEvents = append(errorEvents, event)
	})

	service := &stubSuggestionService{err: errors.New("catalog unavailable")}
	job := NewDailySuggestionJob(service, bus, 1, disabledLogger())

	assert.Error(t, job.Run())
	require.Len(t, errorEvents, 1)
	assert.Equal(t, "catalog unavailable", errorEvents[0].Data["error"])
}

func TestDailySuggestionJob_MinimumCount(t *testing.T) {
	job := NewDailySuggestionJob(&stubSuggestionService{}, nil, 0, disabledLogger())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, job.count)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(disabledLogger())

	ran := false
	err := s.RunNow(jobFunc{name: "probe", fn: func() error {
		ran = true
		return nil
	}})
	require.NoError(t, err)
	assert.True(t, ran)
}

type jobFunc struct {
	name string
	fn   func() error
}

func (j jobFunc) Run() error   { return j.fn() }
func (j jobFunc) Name() string { return j.name }

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(disabledLogger())
	err := s.AddJob("not a schedule", jobFunc{name: "bad", fn: func() error { return nil }})
	assert.Error(t, err)
}
