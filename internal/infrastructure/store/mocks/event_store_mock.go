package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockEventStore is a mock implementation of EventStoreInterface for testing
type MockEventStore struct {
	mu       sync.RWMutex
	events   map[string][]store.Event
	sequence int64

	// For tracking calls in tests
	AppendCalls    []AppendCall
	AppendErr      error
	AppendCallback func(ctx context.Context, aggregateID string, events []store.Event, expectedVersion int) ([]store.Event, error)
	GetEventsErr   error
}

// AppendCall records parameters passed to Append
type AppendCall struct {
	AggregateID     string
	Events          []store.Event
	ExpectedVersion int
}

// NewMockEventStore creates a new MockEventStore
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		events:      make(map[string][]store.Event),
		AppendCalls: make([]AppendCall, 0),
	}
}

// Append stores events in memory under the expected-version gate
func (m *MockEventStore) Append(ctx context.Context, aggregateID string, events []store.Event, expectedVersion int) ([]store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record the call
	m.AppendCalls = append(m.AppendCalls, AppendCall{
		AggregateID:     aggregateID,
		Events:          events,
		ExpectedVersion: expectedVersion,
	})

	// Use callback if provided
	if m.AppendCallback != nil {
		return m.AppendCallback(ctx, aggregateID, events, expectedVersion)
	}

	// Return error if set
	if m.AppendErr != nil {
		return nil, m.AppendErr
	}

	currentVersion := len(m.events[aggregateID])
	if currentVersion != expectedVersion {
		return nil, &store.ConcurrencyError{
			AggregateID:     aggregateID,
			ExpectedVersion: expectedVersion,
			ActualVersion:   currentVersion,
		}
	}

	stored := make([]store.Event, len(events))
	for i, event := range events {
		m.sequence++
		event.Version = expectedVersion + i + 1
		event.Sequence = m.sequence
		m.events[aggregateID] = append(m.events[aggregateID], event)
		stored[i] = event
	}
	return stored, nil
}

// GetEvents returns stored events with version > fromVersion
func (m *MockEventStore) GetEvents(ctx context.Context, aggregateID string, fromVersion int) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetEventsErr != nil {
		return nil, m.GetEventsErr
	}

	stream := m.events[aggregateID]
	if fromVersion >= len(stream) {
		return nil, nil
	}

	events := make([]store.Event, len(stream)-fromVersion)
	copy(events, stream[fromVersion:])
	return events, nil
}

// GetAllEvents returns a sequence-ordered page across aggregates
func (m *MockEventStore) GetAllEvents(ctx context.Context, fromSequence int64, batchSize int) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var page []store.Event
	for seq := fromSequence + 1; seq <= m.sequence && len(page) < batchSize; seq++ {
		for _, stream := range m.events {
			for _, event := range stream {
				if event.Sequence == seq {
					page = append(page, event)
				}
			}
		}
	}
	return page, nil
}

// AddEvent seeds an event directly at the next version, bypassing the
// gate and the call tracking. Test setup only.
func (m *MockEventStore) AddEvent(aggregateID, aggregateType, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequence++
	m.events[aggregateID] = append(m.events[aggregateID], store.Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
		Version:       len(m.events[aggregateID]) + 1,
		Sequence:      m.sequence,
		Timestamp:     time.Now().UTC(),
	})
	return nil
}

// EventCount returns the number of stored events for an aggregate
func (m *MockEventStore) EventCount(aggregateID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events[aggregateID])
}

// Reset clears all stored events and recorded calls
func (m *MockEventStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make(map[string][]store.Event)
	m.sequence = 0
	m.AppendCalls = nil
	m.AppendErr = nil
	m.AppendCallback = nil
	m.GetEventsErr = nil
}
