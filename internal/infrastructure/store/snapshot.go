package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Snapshot represents a point-in-time state of an aggregate.
// Snapshots are a cache over the event stream, never a source of truth:
// deleting one only costs a longer replay.
type Snapshot struct {
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"` // Event version at snapshot time
	State         json.RawMessage `json:"state"`   // Serialized aggregate state
	CreatedAt     time.Time       `json:"created_at"`
}

// SnapshotStore is an in-memory snapshot store
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot // aggregateID -> latest snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]*Snapshot),
	}
}

// SaveSnapshot stores a snapshot, keeping only the latest version per aggregate
func (ss *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if existing, ok := ss.snapshots[snapshot.AggregateID]; ok && existing.Version >= snapshot.Version {
		return nil
	}
	ss.snapshots[snapshot.AggregateID] = snapshot
	return nil
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil if absent
func (ss *SnapshotStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.snapshots[aggregateID], nil
}

// DeleteSnapshot removes any stored snapshot for an aggregate
func (ss *SnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.snapshots, aggregateID)
	return nil
}
