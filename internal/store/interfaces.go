// Package store implements the durable on-device record store backing the
// punch-clock client: the punch record table, the sync-intent queue, and the
// autopunch day markers, all held in a single SQLite database. The store is
// the sole source of truth while the device is offline.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iplaycheck/go-punch-clock/models"
)

// PunchRecordRepository is the durable punch record table.
type PunchRecordRepository interface {
	// Put inserts the record or overwrites an existing one with the same id.
	// Idempotent.
	Put(ctx context.Context, record models.PunchRecord) error

	// Get returns a single record by id, or [ErrRecordNotFound].
	Get(ctx context.Context, id string) (models.PunchRecord, error)

	// GetAll returns every stored record ordered by event time.
	GetAll(ctx context.Context) ([]models.PunchRecord, error)

	// GetByUser returns the user's records ordered by event time.
	GetByUser(ctx context.Context, userID string) ([]models.PunchRecord, error)

	// GetUnsynced returns all records not yet confirmed by the remote store.
	GetUnsynced(ctx context.Context) ([]models.PunchRecord, error)

	// GetByTimeRange returns records with start <= timestamp <= end ordered
	// by event time.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]models.PunchRecord, error)

	// MarkSynced flips the record to synced and stamps synced_at. Returns
	// [ErrRecordNotFound] if the id is absent. Calling it twice is harmless.
	MarkSynced(ctx context.Context, id string) error

	// ReplacePhoto swaps the stored photo payload for url. Used after the
	// inline image has been migrated to the media host.
	ReplacePhoto(ctx context.Context, id string, url string) error

	// Delete removes the record. Removing an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}

// SyncQueueRepository is the durable intent queue of pending remote
// mutations.
type SyncQueueRepository interface {
	// Enqueue appends an item and returns its store-assigned monotonic id.
	Enqueue(ctx context.Context, action models.SyncAction, data json.RawMessage) (int64, error)

	// List returns all queued items in arrival order.
	List(ctx context.Context) ([]models.SyncQueueItem, error)

	// Dequeue removes one item. Returns [ErrQueueItemNotFound] if absent.
	Dequeue(ctx context.Context, id int64) error

	// IncrementRetries bumps the persisted retry counter of one item.
	IncrementRetries(ctx context.Context, id int64) error
}

// AutopunchMarkerRepository tracks, per user, the last calendar day the
// automatic checkout fired.
type AutopunchMarkerRepository interface {
	// LastRun returns the recorded day as "YYYY-MM-DD", or [ErrMarkerNotFound]
	// when the user has no marker yet.
	LastRun(ctx context.Context, userID string) (string, error)

	// MarkRun upserts the marker for the user.
	MarkRun(ctx context.Context, userID string, day string) error
}

// LocalStorage aggregates the repositories plus the whole-store operations
// the application layer needs.
type LocalStorage interface {
	Records() PunchRecordRepository
	Queue() SyncQueueRepository
	Markers() AutopunchMarkerRepository

	// ClearAll wipes records, queue and markers in one transaction. Used for
	// logout/reset; either everything clears or nothing does.
	ClearAll(ctx context.Context) error

	// Stats reports the total record count and the pending-sync count.
	Stats(ctx context.Context) (models.StoreStats, error)

	Close() error
}
