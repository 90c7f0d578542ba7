package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iplaycheck/go-punch-clock/internal/adapter"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/internal/store"
	"github.com/iplaycheck/go-punch-clock/models"
)

const defaultDownloadLimit = 50

// SyncEngineConfig configures a sync engine.
type SyncEngineConfig struct {
	// UserID scopes the download phase. When empty the engine falls back to
	// the gateway token's subject at pass time.
	UserID string

	// DownloadLimit caps remote records pulled per pass. Defaults to 50.
	DownloadLimit int

	// AutoSync is the initial state of the background toggle.
	AutoSync bool
}

type syncEngine struct {
	storage store.LocalStorage
	gateway adapter.RemoteGateway
	network adapter.Connectivity
	log     *logger.Logger

	userID        string
	downloadLimit int

	now func() time.Time

	mu       sync.Mutex
	syncing  bool
	autoSync bool

	listenerMu   sync.Mutex
	listeners    map[int]SyncListener
	nextListener int
}

// NewSyncEngine builds a SyncEngine over the local store, the remote gateway
// and a connectivity probe.
func NewSyncEngine(storage store.LocalStorage, gateway adapter.RemoteGateway, network adapter.Connectivity, cfg SyncEngineConfig, log *logger.Logger) SyncEngine {
	if cfg.DownloadLimit <= 0 {
		cfg.DownloadLimit = defaultDownloadLimit
	}

	return &syncEngine{
		storage:       storage,
		gateway:       gateway,
		network:       network,
		log:           log,
		userID:        cfg.UserID,
		downloadLimit: cfg.DownloadLimit,
		autoSync:      cfg.AutoSync,
		now:           time.Now,
		listeners:     make(map[int]SyncListener),
	}
}

func (s *syncEngine) Run(ctx context.Context) error {
	if !s.tryAcquire() {
		s.log.Debug().Str("func", "syncEngine.Run").Msg("sync pass already running, skipping")
		return ErrSyncInProgress
	}
	defer s.release()

	if !s.network.Online(ctx) {
		s.log.Debug().Str("func", "syncEngine.Run").Msg("offline, skipping sync pass")
		return ErrOffline
	}

	s.notify(SyncEvent{Type: EventSyncStarted})

	uploaded, failedUp, err := s.uploadPhase(ctx)
	if err != nil {
		s.notify(SyncEvent{Type: EventSyncError, Err: err})
		return err
	}

	downloaded, failedDown, err := s.downloadPhase(ctx)
	if err != nil {
		s.notify(SyncEvent{Type: EventSyncError, Uploaded: uploaded, Failed: failedUp, Err: err})
		return err
	}

	processed, failedQueue := s.queuePhase(ctx)

	s.notify(SyncEvent{
		Type:       EventSyncCompleted,
		Uploaded:   uploaded,
		Downloaded: downloaded,
		Processed:  processed,
		Failed:     failedUp + failedDown + failedQueue,
	})

	return nil
}

func (s *syncEngine) ForceRun(ctx context.Context) error {
	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()

	return s.Run(ctx)
}

func (s *syncEngine) Status(ctx context.Context) models.SyncStatus {
	online := s.network.Online(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SyncStatus{
		Syncing:         s.syncing,
		AutoSyncEnabled: s.autoSync,
		Online:          online,
	}
}

func (s *syncEngine) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
}

func (s *syncEngine) AutoSyncEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSync
}

func (s *syncEngine) AddListener(fn SyncListener) int {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return id
}

func (s *syncEngine) RemoveListener(id int) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	delete(s.listeners, id)
}

// uploadPhase pushes every unsynced record to the remote store. Inline
// photos migrate to the media host first; when that fails the record
// uploads with the inline payload still attached. Per-record failures are
// logged and skipped so one bad record cannot wedge the rest; a failure to
// load the batch aborts the whole pass.
func (s *syncEngine) uploadPhase(ctx context.Context) (uploaded, failed int, err error) {
	records, err := s.storage.Records().GetUnsynced(ctx)
	if err != nil {
		s.log.Err(err).Str("func", "syncEngine.uploadPhase").Msg("failed to load unsynced records")
		return 0, 0, fmt.Errorf("load unsynced records: %w", err)
	}

	for _, rec := range records {
		if rec.HasInlinePhoto() {
			rec.Photo = s.migratePhoto(ctx, rec)
		}

		if _, err = s.gateway.CreateRecord(ctx, rec); err != nil {
			s.log.Err(err).Str("func", "syncEngine.uploadPhase").Str("recordID", rec.ID).Msg("failed to upload record")
			failed++
			continue
		}

		if err = s.storage.Records().MarkSynced(ctx, rec.ID); err != nil {
			s.log.Err(err).Str("func", "syncEngine.uploadPhase").Str("recordID", rec.ID).Msg("failed to mark record synced")
			failed++
			continue
		}

		uploaded++
	}

	return uploaded, failed, nil
}

// migratePhoto uploads the record's inline photo and swaps the stored
// payload for the returned URL. On upload failure the inline payload stays
// untouched, locally and on the outgoing record: the record still syncs
// oversized, and a transient image-host outage never loses the photo.
func (s *syncEngine) migratePhoto(ctx context.Context, rec models.PunchRecord) string {
	url, err := s.gateway.UploadMedia(ctx, rec.Photo, "punch_"+rec.ID)
	if err != nil {
		s.log.Err(err).Str("func", "syncEngine.migratePhoto").Str("recordID", rec.ID).Msg("photo upload failed, syncing record with inline photo")
		return rec.Photo
	}

	if err = s.storage.Records().ReplacePhoto(ctx, rec.ID, url); err != nil {
		s.log.Err(err).Str("func", "syncEngine.migratePhoto").Str("recordID", rec.ID).Msg("failed to store migrated photo url")
	}

	return url
}

// downloadPhase pulls the newest remote records and stores the ones this
// device has never seen. Records already present locally are left alone:
// the local copy may carry edits still waiting in the mutation queue, and
// overwriting it with remote state would show them stale until the queue
// drains. Skipping also makes re-downloading the same record harmless.
func (s *syncEngine) downloadPhase(ctx context.Context) (downloaded, failed int, err error) {
	filter := models.QueryFilter{UserID: s.resolveUserID(), Limit: s.downloadLimit}

	remote, err := s.gateway.QueryRecords(ctx, filter)
	if err != nil {
		return 0, 0, fmt.Errorf("download records: %w", err)
	}

	syncTime := s.now()
	for _, rr := range remote {
		rec := localRecordFromRemote(rr, syncTime)

		if _, getErr := s.storage.Records().Get(ctx, rec.ID); getErr == nil {
			continue
		} else if !errors.Is(getErr, store.ErrRecordNotFound) {
			s.log.Err(getErr).Str("func", "syncEngine.downloadPhase").Str("recordID", rec.ID).Msg("failed to check for existing record")
			failed++
			continue
		}

		if err := s.storage.Records().Put(ctx, rec); err != nil {
			s.log.Err(err).Str("func", "syncEngine.downloadPhase").Str("recordID", rec.ID).Msg("failed to store downloaded record")
			failed++
			continue
		}
		downloaded++
	}

	return downloaded, failed, nil
}

// queuePhase drains pending remote mutations in arrival order. An item is
// dequeued only after the gateway confirms it; failures bump the persisted
// retry counter and leave the item for the next pass. Payloads that no
// longer decode are dropped since they can never succeed.
func (s *syncEngine) queuePhase(ctx context.Context) (processed, failed int) {
	items, err := s.storage.Queue().List(ctx)
	if err != nil {
		s.log.Err(err).Str("func", "syncEngine.queuePhase").Msg("failed to load sync queue")
		return 0, 1
	}

	for _, item := range items {
		mutation, err := item.Mutation()
		if err != nil {
			s.log.Err(err).Str("func", "syncEngine.queuePhase").Int64("itemID", item.ID).Msg("dropping undecodable queue item")
			_ = s.storage.Queue().Dequeue(ctx, item.ID)
			continue
		}

		var opErr error
		switch item.Action {
		case models.ActionUpdate:
			opErr = s.gateway.UpdateRecord(ctx, mutation.ID, mutation.Fields)
		case models.ActionDelete:
			opErr = s.gateway.DeleteRecord(ctx, mutation.ID)
		default:
			s.log.Error().Str("func", "syncEngine.queuePhase").Int64("itemID", item.ID).Str("action", string(item.Action)).Msg("dropping queue item with unknown action")
			_ = s.storage.Queue().Dequeue(ctx, item.ID)
			continue
		}

		if opErr != nil {
			s.log.Err(opErr).Str("func", "syncEngine.queuePhase").Int64("itemID", item.ID).Msg("queue item failed, will retry next pass")
			if err = s.storage.Queue().IncrementRetries(ctx, item.ID); err != nil {
				s.log.Err(err).Str("func", "syncEngine.queuePhase").Int64("itemID", item.ID).Msg("failed to bump retry counter")
			}
			failed++
			continue
		}

		if err = s.storage.Queue().Dequeue(ctx, item.ID); err != nil {
			s.log.Err(err).Str("func", "syncEngine.queuePhase").Int64("itemID", item.ID).Msg("failed to dequeue applied item")
			failed++
			continue
		}
		processed++
	}

	return processed, failed
}

func (s *syncEngine) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return false
	}
	s.syncing = true
	return true
}

func (s *syncEngine) release() {
	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()
}

func (s *syncEngine) resolveUserID() string {
	if s.userID != "" {
		return s.userID
	}
	return s.gateway.UserID()
}

func (s *syncEngine) notify(event SyncEvent) {
	s.listenerMu.Lock()
	listeners := make([]SyncListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		s.safeNotify(fn, event)
	}
}

func (s *syncEngine) safeNotify(fn SyncListener, event SyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("func", "syncEngine.safeNotify").Any("panic", r).Msg("sync listener panicked")
		}
	}()
	fn(event)
}

// localRecordFromRemote converts a downloaded document into the local
// representation. Records that originated on this device come back with
// their original id as clientId; keying on it keeps the upsert idempotent.
func localRecordFromRemote(rr models.RemoteRecord, syncTime time.Time) models.PunchRecord {
	id := rr.ClientID
	if id == "" {
		id = rr.ID
	}

	syncedAt := rr.SyncedAt
	if syncedAt == nil {
		t := syncTime
		syncedAt = &t
	}

	return models.PunchRecord{
		ID:        id,
		UserID:    rr.UserID,
		Type:      rr.Type,
		Timestamp: rr.Timestamp,
		Photo:     rr.Photo,
		Location:  rr.Location,
		Synced:    true,
		SyncedAt:  syncedAt,
	}
}
