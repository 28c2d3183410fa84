package aggregate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

// Aggregate defines the interface for event-sourced aggregates.
// The recordPending method is unexported, so the interface can only be
// satisfied by embedding Base.
type Aggregate interface {
	GetID() string
	GetVersion() int
	SetVersion(int)

	// ApplyEvent folds one event into aggregate state. It must be
	// deterministic and side-effect-free; the version is advanced by the
	// caller, not by the fold.
	ApplyEvent(store.Event) error

	// ClearPendingEvents returns the buffered not-yet-persisted events and
	// empties the buffer.
	ClearPendingEvents() []store.Event

	recordPending(store.Event)
}

// Base carries the identity, version and pending-event buffer shared by all
// aggregates. Embed it and implement ApplyEvent.
type Base struct {
	ID      string `json:"id"`
	Version int    `json:"version"` // Count of events folded into state

	pending []store.Event
}

func (b *Base) GetID() string    { return b.ID }
func (b *Base) GetVersion() int  { return b.Version }
func (b *Base) SetVersion(v int) { b.Version = v }

// ClearPendingEvents returns and empties the pending buffer
func (b *Base) ClearPendingEvents() []store.Event {
	pending := b.pending
	b.pending = nil
	return pending
}

func (b *Base) recordPending(event store.Event) {
	b.pending = append(b.pending, event)
}

// Raise builds a new event at the aggregate's next version, folds it into
// state and buffers it for persistence. Business methods validate their
// invariants before calling Raise, so a rejected operation never emits a
// partial event.
func Raise(agg Aggregate, aggregateType, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := store.Event{
		ID:            uuid.New().String(),
		AggregateID:   agg.GetID(),
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
		Version:       agg.GetVersion() + 1,
	}

	if err := agg.ApplyEvent(event); err != nil {
		return fmt.Errorf("failed to apply %s: %w", eventType, err)
	}
	agg.SetVersion(event.Version)
	agg.recordPending(event)
	return nil
}

// Reconstitute materializes an aggregate from an optional snapshot and the
// events recorded after it. Replaying the same history always yields the
// same state and version, and the result carries no pending events.
func Reconstitute[T Aggregate](snapshot *store.Snapshot, events []store.Event, newAggregate func() T) (T, error) {
	agg := newAggregate()

	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, agg); err != nil {
			var zero T
			return zero, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		agg.SetVersion(snapshot.Version)
	}

	for _, event := range events {
		if err := agg.ApplyEvent(event); err != nil {
			var zero T
			return zero, fmt.Errorf("failed to apply event %s: %w", event.EventType, err)
		}
		agg.SetVersion(event.Version)
	}

	return agg, nil
}
