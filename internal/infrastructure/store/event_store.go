package store

import (
	"context"
	"sync"

	"github.com/example/doc-insight/internal/infrastructure/kafka"
)

// EventStore stores events in memory and publishes them to Kafka.
// Used for tests and single-process deployments.
type EventStore struct {
	mu       sync.RWMutex
	events   map[string][]Event // aggregateID -> events
	log      []Event            // all events in sequence order
	producer *kafka.Producer
}

func NewEventStore(producer *kafka.Producer) *EventStore {
	return &EventStore{
		events:   make(map[string][]Event),
		producer: producer,
	}
}

// Append stores events under the optimistic-concurrency gate and publishes
// them to Kafka after they are recorded.
func (es *EventStore) Append(ctx context.Context, aggregateID string, events []Event, expectedVersion int) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	es.mu.Lock()
	currentVersion := len(es.events[aggregateID])
	if currentVersion != expectedVersion {
		es.mu.Unlock()
		return nil, &ConcurrencyError{
			AggregateID:     aggregateID,
			ExpectedVersion: expectedVersion,
			ActualVersion:   currentVersion,
		}
	}

	stored := make([]Event, len(events))
	for i, event := range events {
		event.Version = expectedVersion + i + 1
		event.Sequence = int64(len(es.log)) + 1
		es.events[aggregateID] = append(es.events[aggregateID], event)
		es.log = append(es.log, event)
		stored[i] = event
	}
	es.mu.Unlock()

	// Publish to Kafka
	if es.producer != nil {
		for _, event := range stored {
			if err := es.producer.Publish(ctx, aggregateID, event); err != nil {
				return nil, err
			}
		}
	}

	return stored, nil
}

// GetEvents returns events for an aggregate with version > fromVersion
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	stream := es.events[aggregateID]
	if fromVersion >= len(stream) {
		return nil, nil
	}

	events := make([]Event, len(stream)-fromVersion)
	copy(events, stream[fromVersion:])
	return events, nil
}

// GetAllEvents returns a sequence-ordered page of events across aggregates
func (es *EventStore) GetAllEvents(ctx context.Context, fromSequence int64, batchSize int) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if fromSequence >= int64(len(es.log)) {
		return nil, nil
	}

	end := fromSequence + int64(batchSize)
	if end > int64(len(es.log)) {
		end = int64(len(es.log))
	}

	page := make([]Event, end-fromSequence)
	copy(page, es.log[fromSequence:end])
	return page, nil
}
