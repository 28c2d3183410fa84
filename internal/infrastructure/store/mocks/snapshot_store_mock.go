package mocks

import (
	"context"
	"sync"

	"github.com/example/doc-insight/internal/infrastructure/store"
)

// MockSnapshotStore is a mock implementation of SnapshotStoreInterface for testing
type MockSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*store.Snapshot

	// For tracking calls in tests
	SaveCalls []store.Snapshot
	SaveErr   error
	GetErr    error
}

// NewMockSnapshotStore creates a new MockSnapshotStore
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		snapshots: make(map[string]*store.Snapshot),
	}
}

// SaveSnapshot stores a snapshot in memory
func (m *MockSnapshotStore) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, *snapshot)

	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.snapshots[snapshot.AggregateID] = snapshot
	return nil
}

// GetSnapshot returns the stored snapshot, or nil if absent
func (m *MockSnapshotStore) GetSnapshot(ctx context.Context, aggregateID string) (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.snapshots[aggregateID], nil
}

// SetSnapshot seeds a snapshot directly, bypassing the call tracking.
// Test setup only.
func (m *MockSnapshotStore) SetSnapshot(snapshot *store.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AggregateID] = snapshot
}

// DeleteSnapshot removes the stored snapshot
func (m *MockSnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, aggregateID)
	return nil
}
