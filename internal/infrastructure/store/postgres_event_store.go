package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/doc-insight/internal/infrastructure/kafka"
	"github.com/lib/pq"
)

// PostgresEventStore stores events in PostgreSQL.
//
// The optimistic-concurrency gate is enforced inside one transaction: the
// aggregate's head row is locked with SELECT ... FOR UPDATE, the expected
// version is checked against it, and the events are inserted while the lock
// is held. Two concurrent appends for the same aggregate therefore cannot
// both observe the same expected version as valid; unrelated aggregates
// lock different rows and never contend.
type PostgresEventStore struct {
	db       *sql.DB
	producer *kafka.Producer
}

func NewPostgresEventStore(db *sql.DB, producer *kafka.Producer) *PostgresEventStore {
	return &PostgresEventStore{
		db:       db,
		producer: producer,
	}
}

// Append stores events in PostgreSQL and publishes them to Kafka after commit
func (es *PostgresEventStore) Append(ctx context.Context, aggregateID string, events []Event, expectedVersion int) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx,
		"SELECT version FROM aggregate_heads WHERE aggregate_id = $1 FOR UPDATE",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read aggregate head: %w", err)
	}

	if currentVersion != expectedVersion {
		return nil, &ConcurrencyError{
			AggregateID:     aggregateID,
			ExpectedVersion: expectedVersion,
			ActualVersion:   currentVersion,
		}
	}

	stored := make([]Event, len(events))
	for i, event := range events {
		event.Version = expectedVersion + i + 1
		err = tx.QueryRowContext(ctx,
			`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING sequence`,
			event.ID,
			event.AggregateID,
			event.AggregateType,
			event.EventType,
			event.Data,
			event.Version,
			event.Timestamp,
		).Scan(&event.Sequence)
		if err != nil {
			// Two first-time appends race before either head row exists;
			// the unique constraint on (aggregate_id, version) decides.
			if isUniqueViolation(err) {
				return nil, &ConcurrencyError{
					AggregateID:     aggregateID,
					ExpectedVersion: expectedVersion,
					ActualVersion:   expectedVersion + i + 1,
				}
			}
			return nil, fmt.Errorf("failed to insert event: %w", err)
		}
		stored[i] = event
	}

	newVersion := expectedVersion + len(events)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO aggregate_heads (aggregate_id, version, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (aggregate_id) DO UPDATE SET version = $2, updated_at = NOW()`,
		aggregateID,
		newVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update aggregate head: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, &ConcurrencyError{
				AggregateID:     aggregateID,
				ExpectedVersion: expectedVersion,
				ActualVersion:   newVersion,
			}
		}
		return nil, fmt.Errorf("failed to commit append: %w", err)
	}

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
func (es *PostgresEventStore) GetEvents(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, sequence, created_at
		 FROM events
		 WHERE aggregate_id = $1 AND version > $2
		 ORDER BY version ASC`,
		aggregateID,
		fromVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetAllEvents returns a sequence-ordered page of events across aggregates
func (es *PostgresEventStore) GetAllEvents(ctx context.Context, fromSequence int64, batchSize int) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, sequence, created_at
		 FROM events
		 WHERE sequence > $1
		 ORDER BY sequence ASC
		 LIMIT $2`,
		fromSequence,
		batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &e.Sequence, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
