// Package events provides the in-process event bus used to fan out system
// events to SSE clients and background listeners.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	SuggestionGenerated EventType = "SUGGESTION_GENERATED"
	CatalogSynced       EventType = "CATALOG_SYNCED"
	MetricsRecorded     EventType = "METRICS_RECORDED"
	StrategyUpdated     EventType = "STRATEGY_UPDATED"
	SeasonalUpdated     EventType = "SEASONAL_UPDATED"
	BackupCompleted     EventType = "BACKUP_COMPLETED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, in the order SSE clients subscribe
func AllTypes() []EventType {
	return []EventType{
		SuggestionGenerated,
		CatalogSynced,
		MetricsRecorded,
		StrategyUpdated,
		SeasonalUpdated,
		BackupCompleted,
		ErrorOccurred,
	}
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data"`
}

// Handler receives published events. Handlers must not block; slow consumers
// should buffer on their side.
type Handler func(event *Event)

// Bus fans events out to subscribed handlers. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[int]Handler
	nextID   int
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType]map[int]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for an event type and returns a function
// that removes the subscription.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// Publish delivers an event to every subscribed handler synchronously
func (b *Bus) Publish(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Module:    module,
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[eventType]))
	for _, handler := range b.handlers[eventType] {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Int("handlers", len(handlers)).
		Msg("Event published")

	for _, handler := range handlers {
		handler(event)
	}
}

// PublishError publishes an error event
func (b *Bus) PublishError(module string, err error, context map[string]interface{}) {
	b.Publish(ErrorOccurred, module, map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	})
}
