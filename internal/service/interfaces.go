// Package service holds the punch-clock business logic: record creation with
// geofence validation, the offline-first sync engine and its background job,
// and the end-of-day autopunch scheduler. Services depend on the store and
// adapter packages through their interfaces only.
package service

import (
	"context"

	"github.com/iplaycheck/go-punch-clock/models"
)

// PunchService defines the record-side contract the UI collaborator calls.
// All operations work against the local store first; the sync engine moves
// records to the remote store in the background.
type PunchService interface {
	// CreatePunch validates the input against the configured geofence,
	// assigns a fresh id, stamps the event time, and persists the record
	// unsynced. Returns the stored record.
	CreatePunch(ctx context.Context, input PunchInput) (models.PunchRecord, error)

	// CreateAutoPunchOut persists a synthetic checkout for the user,
	// bypassing the geofence. Used by the autopunch scheduler; carries no
	// photo and no position.
	CreateAutoPunchOut(ctx context.Context, userID string) (models.PunchRecord, error)

	// Records returns all of the user's records ordered by event time.
	Records(ctx context.Context, userID string) ([]models.PunchRecord, error)

	// TodayRecords returns the user's records whose event time falls on the
	// calendar day of now, ordered by event time.
	TodayRecords(ctx context.Context, userID string) ([]models.PunchRecord, error)

	// UpdatePunch applies the field patch to the local record and, when the
	// record has already been synced, queues the same patch for remote
	// application on the next sync pass.
	UpdatePunch(ctx context.Context, id string, fields map[string]any) error

	// DeletePunch removes the local record and, when it had been synced,
	// queues a remote delete.
	DeletePunch(ctx context.Context, id string) error

	// Stats reports local record totals for status displays.
	Stats(ctx context.Context) (models.StoreStats, error)

	// Logout wipes all local state: records, pending queue and markers go in
	// one transaction.
	Logout(ctx context.Context) error
}

// SyncEngine drives record synchronisation with the remote store. A pass has
// three phases in order: upload unsynced records (photos migrated to the
// media host first), download recent remote records, then drain the pending
// mutation queue. At most one pass runs at a time.
type SyncEngine interface {
	// Run executes a single sync pass. Returns [ErrSyncInProgress] when a
	// pass is already running and [ErrOffline] when the backend is
	// unreachable; both leave local state untouched.
	Run(ctx context.Context) error

	// ForceRun clears a possibly stuck in-progress flag and runs a pass.
	ForceRun(ctx context.Context) error

	// Status returns a point-in-time snapshot of the engine.
	Status(ctx context.Context) models.SyncStatus

	// SetAutoSync toggles whether the background job triggers passes.
	SetAutoSync(enabled bool)

	// AutoSyncEnabled reports the current toggle state.
	AutoSyncEnabled() bool

	// AddListener registers a callback for pass lifecycle events and returns
	// an id usable with RemoveListener. A panicking listener is isolated; it
	// affects neither other listeners nor the pass itself.
	AddListener(fn SyncListener) int

	// RemoveListener drops a previously registered callback. Unknown ids are
	// ignored.
	RemoveListener(id int)
}

// SyncEventType names a sync pass lifecycle notification.
type SyncEventType string

const (
	EventSyncStarted   SyncEventType = "sync_started"
	EventSyncCompleted SyncEventType = "sync_completed"
	EventSyncError     SyncEventType = "sync_error"
)

// SyncEvent is delivered to registered listeners around a sync pass.
type SyncEvent struct {
	Type SyncEventType

	// Uploaded, Downloaded and Processed count the records pushed, pulled
	// and queue items applied by a completed pass. Failed counts per-record
	// and per-item errors that the pass skipped over.
	Uploaded   int
	Downloaded int
	Processed  int
	Failed     int

	// Err carries the failure for EventSyncError.
	Err error
}

// SyncListener receives sync pass lifecycle events.
type SyncListener func(event SyncEvent)
