package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeScenarioChanged  EventType = "scenario_changed"
	EventTypeSharesReplaced   EventType = "shares_replaced"
	EventTypeAttendanceLogged EventType = "attendance_logged"
	EventTypeProjectDeleted   EventType = "project_deleted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ScenarioChangedEvent is emitted after a scenario is created, updated or deleted
type ScenarioChangedEvent struct {
	ScenarioID int64
	Name       string
	Action     string
	IsDefault  bool
}

func (e ScenarioChangedEvent) Type() EventType {
	return EventTypeScenarioChanged
}

// SharesReplacedEvent is emitted after a scenario's shares were rewritten
type SharesReplacedEvent struct {
	ScenarioID   int64
	PartnerCount int
	Valid        bool
}

func (e SharesReplacedEvent) Type() EventType {
	return EventTypeSharesReplaced
}

// AttendanceLoggedEvent is emitted for every attendance write
type AttendanceLoggedEvent struct {
	ProjectID int64
	Date      time.Time
	Partner   string
	Present   bool
}

func (e AttendanceLoggedEvent) Type() EventType {
	return EventTypeAttendanceLogged
}

// ProjectDeletedEvent is emitted after a project and its worklog were removed
type ProjectDeletedEvent struct {
	ProjectID      int64
	Name           string
	WorklogEntries int64
}

func (e ProjectDeletedEvent) Type() EventType {
	return EventTypeProjectDeleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit calls every handler registered for the event's type, in
// subscription order, on the caller's goroutine. A panicking handler
// is logged and does not stop the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.dispatch(ctx, event, handler, i)
	}
}

func (b *Bus) dispatch(ctx context.Context, event Event, h Handler, handlerIndex int) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": handlerIndex,
				"panic":        r,
			}).Error("Event handler panicked")
		}
	}()
	h(ctx, event)
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events")

	if b.real != nil {
		// the transaction's context may already be cancelled by the caller
		eventCtx := context.WithoutCancel(ctx)
		for _, ev := range b.pending {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns how many events wait for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
