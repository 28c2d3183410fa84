package store

import "context"

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	// Append stores events for an aggregate if its persisted version still
	// equals expectedVersion; returns *ConcurrencyError otherwise. On
	// success the returned events carry their assigned version and global
	// sequence.
	Append(ctx context.Context, aggregateID string, events []Event, expectedVersion int) ([]Event, error)

	// GetEvents returns events for an aggregate with version > fromVersion,
	// ordered by version ascending. An unknown aggregate yields an empty
	// slice, not an error.
	GetEvents(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error)

	// GetAllEvents returns a sequence-ordered page of events across all
	// aggregates, starting after fromSequence. Used by projections.
	GetAllEvents(ctx context.Context, fromSequence int64, batchSize int) ([]Event, error)
}

// SnapshotStoreInterface defines the interface for snapshot stores
type SnapshotStoreInterface interface {
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetSnapshot returns the latest snapshot for the aggregate, or nil
	// when none exists.
	GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error)

	DeleteSnapshot(ctx context.Context, aggregateID string) error
}
