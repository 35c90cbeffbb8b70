// Package events provides an in-process publish/subscribe bus for engine
// lifecycle events.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a class of engine event.
type EventType string

const (
	// SignalDetected fires when a detector's result is persisted
	SignalDetected EventType = "signal.detected"
	// ScoreComputed fires after a score snapshot is recorded
	ScoreComputed EventType = "score.computed"
	// SweepCompleted fires at the end of a detection sweep
	SweepCompleted EventType = "sweep.completed"
	// OpportunityFound fires when a score crosses an opportunity threshold
	OpportunityFound EventType = "opportunity.found"
)

// SignalDetectedData contains data for SignalDetected events.
type SignalDetectedData struct {
	SignalID  string  `json:"signal_id"`
	AccountID string  `json:"account_id"`
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	Value     float64 `json:"value"`
}

// ScoreComputedData contains data for ScoreComputed events.
type ScoreComputedData struct {
	AccountID string  `json:"account_id"`
	ScoreType string  `json:"score_type"`
	Score     float64 `json:"score"`
	Grade     string  `json:"grade"`
}

// SweepCompletedData contains data for SweepCompleted events.
type SweepCompletedData struct {
	AccountsProcessed int `json:"accounts_processed"`
	SignalsDetected   int `json:"signals_detected"`
	SignalsPersisted  int `json:"signals_persisted"`
	Errors            int `json:"errors"`
}

// OpportunityFoundData contains data for OpportunityFound events.
type OpportunityFoundData struct {
	AccountID      string  `json:"account_id"`
	Type           string  `json:"type"`
	Score          float64 `json:"score"`
	EstimatedValue float64 `json:"estimated_value"`
}

// Event is one published occurrence with its payload.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      any       `json:"data,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Manager routes published events to subscribers by type.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewManager creates an event manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("module", "events").Logger(),
	}
}

// Subscribe registers a handler for one event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Emit publishes an event to every subscriber of its type.
func (m *Manager) Emit(eventType EventType, module string, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}

	m.log.Debug().
		Str("event", string(eventType)).
		Str("source", module).
		Int("subscribers", len(handlers)).
		Msg("Event emitted")
}
