package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresSnapshotStore stores the latest snapshot per aggregate in PostgreSQL
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

// SaveSnapshot upserts the snapshot for an aggregate. Writes carrying an
// older version than the stored one are ignored, so concurrent snapshotters
// cannot move an aggregate's snapshot backwards.
func (ss *PostgresSnapshotStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	_, err := ss.db.ExecContext(ctx,
		`INSERT INTO snapshots (aggregate_id, aggregate_type, version, state, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (aggregate_id) DO UPDATE
		 SET aggregate_type = $2, version = $3, state = $4, created_at = $5
		 WHERE snapshots.version < $3`,
		snapshot.AggregateID,
		snapshot.AggregateType,
		snapshot.Version,
		snapshot.State,
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil if absent
func (ss *PostgresSnapshotStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	var s Snapshot
	err := ss.db.QueryRowContext(ctx,
		`SELECT aggregate_id, aggregate_type, version, state, created_at
		 FROM snapshots
		 WHERE aggregate_id = $1`,
		aggregateID,
	).Scan(&s.AggregateID, &s.AggregateType, &s.Version, &s.State, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &s, nil
}

// DeleteSnapshot removes any stored snapshot for an aggregate
func (ss *PostgresSnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID string) error {
	_, err := ss.db.ExecContext(ctx,
		"DELETE FROM snapshots WHERE aggregate_id = $1",
		aggregateID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
