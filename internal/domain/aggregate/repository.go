package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/doc-insight/internal/infrastructure/store"
)

const (
	defaultSnapshotEvery  = 10
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// Repository loads and saves one aggregate type, composing the event store
// and the snapshot store. Saves retry on concurrency conflicts with
// exponential backoff; that retry is a mechanical safety net for racing
// appends only — callers whose decision depends on the aggregate's prior
// content must reload, re-run the business operation and save again.
type Repository[T Aggregate] struct {
	eventStore    store.EventStoreInterface
	snapshotStore store.SnapshotStoreInterface
	aggregateType string
	newAggregate  func() T

	snapshotEvery  int
	maxRetries     int
	retryBaseDelay time.Duration
}

// Option configures a Repository
type Option func(*repositoryConfig)

type repositoryConfig struct {
	snapshotEvery  int
	maxRetries     int
	retryBaseDelay time.Duration
}

// WithSnapshotEvery sets how many versions apart snapshots are taken.
// Zero disables snapshotting.
func WithSnapshotEvery(n int) Option {
	return func(c *repositoryConfig) { c.snapshotEvery = n }
}

// WithMaxRetries sets the number of additional append attempts after a
// concurrency conflict.
func WithMaxRetries(n int) Option {
	return func(c *repositoryConfig) { c.maxRetries = n }
}

// WithRetryBaseDelay sets the backoff delay before the first retry; each
// further retry doubles it.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *repositoryConfig) { c.retryBaseDelay = d }
}

func NewRepository[T Aggregate](
	eventStore store.EventStoreInterface,
	snapshotStore store.SnapshotStoreInterface,
	aggregateType string,
	newAggregate func() T,
	opts ...Option,
) *Repository[T] {
	cfg := repositoryConfig{
		snapshotEvery:  defaultSnapshotEvery,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Repository[T]{
		eventStore:     eventStore,
		snapshotStore:  snapshotStore,
		aggregateType:  aggregateType,
		newAggregate:   newAggregate,
		snapshotEvery:  cfg.snapshotEvery,
		maxRetries:     cfg.maxRetries,
		retryBaseDelay: cfg.retryBaseDelay,
	}
}

// Get loads an aggregate from the latest snapshot plus newer events, or by
// full replay when no snapshot exists. Returns false when the aggregate has
// no recorded history at all. A failing snapshot store degrades to full
// replay rather than failing the load.
func (r *Repository[T]) Get(ctx context.Context, aggregateID string) (T, bool, error) {
	var zero T

	var snapshot *store.Snapshot
	if r.snapshotStore != nil {
		var err error
		snapshot, err = r.snapshotStore.GetSnapshot(ctx, aggregateID)
		if err != nil {
			log.Printf("[Repository] Snapshot read failed for %s %s, replaying full history: %v",
				r.aggregateType, aggregateID, err)
			snapshot = nil
		}
	}

	fromVersion := 0
	if snapshot != nil {
		fromVersion = snapshot.Version
	}

	events, err := r.eventStore.GetEvents(ctx, aggregateID, fromVersion)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get events: %w", err)
	}

	if snapshot == nil && len(events) == 0 {
		return zero, false, nil
	}

	agg, err := Reconstitute(snapshot, events, r.newAggregate)
	if err != nil {
		return zero, false, err
	}
	return agg, true, nil
}

// Save appends the aggregate's pending events under the optimistic
// concurrency gate. Concurrency conflicts are retried up to the configured
// maximum with exponential backoff; any other error is returned as is. A
// snapshot is written when the save crossed a snapshot boundary, and a
// snapshot failure never fails the save.
func (r *Repository[T]) Save(ctx context.Context, agg T) error {
	pending := agg.ClearPendingEvents()
	if len(pending) == 0 {
		return nil
	}

	expectedVersion := agg.GetVersion() - len(pending)

	var lastErr error
	for attempt := 0; ; attempt++ {
		_, err := r.eventStore.Append(ctx, agg.GetID(), pending, expectedVersion)
		if err == nil {
			break
		}

		var conflict *store.ConcurrencyError
		if !errors.As(err, &conflict) {
			return err
		}
		lastErr = err

		if attempt >= r.maxRetries {
			return lastErr
		}

		delay := r.retryBaseDelay << attempt
		log.Printf("[Repository] Concurrency conflict on %s %s (attempt %d/%d), retrying in %v",
			r.aggregateType, agg.GetID(), attempt+1, r.maxRetries, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	r.maybeSnapshot(ctx, agg, expectedVersion)
	return nil
}

// maybeSnapshot writes a snapshot when the save crossed a snapshot
// boundary. Crossing, not landing exactly on a multiple, so batches that
// jump past a boundary still get their snapshot.
func (r *Repository[T]) maybeSnapshot(ctx context.Context, agg T, previousVersion int) {
	if r.snapshotStore == nil || r.snapshotEvery <= 0 {
		return
	}
	if agg.GetVersion()/r.snapshotEvery == previousVersion/r.snapshotEvery {
		return
	}

	state, err := json.Marshal(agg)
	if err != nil {
		log.Printf("[Repository] Failed to marshal %s %s for snapshot: %v",
			r.aggregateType, agg.GetID(), err)
		return
	}

	snapshot := &store.Snapshot{
		AggregateID:   agg.GetID(),
		AggregateType: r.aggregateType,
		Version:       agg.GetVersion(),
		State:         state,
		CreatedAt:     time.Now(),
	}

	if err := r.snapshotStore.SaveSnapshot(ctx, snapshot); err != nil {
		log.Printf("[Repository] Failed to save snapshot for %s %s at version %d: %v",
			r.aggregateType, agg.GetID(), snapshot.Version, err)
	}
}
