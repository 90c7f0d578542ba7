package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iplaycheck/go-punch-clock/internal/config"
	"github.com/iplaycheck/go-punch-clock/internal/geo"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/internal/store"
	"github.com/iplaycheck/go-punch-clock/models"
)

// PunchInput describes a punch event to record.
type PunchInput struct {
	UserID   string
	Type     models.PunchType
	Photo    string
	Position *models.Position

	// At overrides the event time. Zero means now.
	At time.Time
}

type punchService struct {
	storage  store.LocalStorage
	geofence config.Geofence
	log      *logger.Logger

	// defaultUserID is used when the input carries no user.
	defaultUserID string

	now   func() time.Time
	newID func() string
}

// NewPunchService builds the standard punch recording service.
func NewPunchService(storage store.LocalStorage, geofence config.Geofence, defaultUserID string, log *logger.Logger) PunchService {
	return &punchService{
		storage:       storage,
		geofence:      geofence,
		log:           log,
		defaultUserID: defaultUserID,
		now:           time.Now,
		newID:         newRecordID,
	}
}

func (p *punchService) CreatePunch(ctx context.Context, input PunchInput) (models.PunchRecord, error) {
	if err := p.checkGeofence(input.Position); err != nil {
		return models.PunchRecord{}, err
	}

	userID := input.UserID
	if userID == "" {
		userID = p.defaultUserID
	}
	if userID == "" {
		return models.PunchRecord{}, ErrNoUserID
	}

	at := input.At
	if at.IsZero() {
		at = p.now()
	}

	record := models.PunchRecord{
		ID:        p.newID(),
		UserID:    userID,
		Type:      input.Type,
		Timestamp: at,
		Photo:     input.Photo,
		Location:  input.Position,
		Synced:    false,
	}

	if err := p.storage.Records().Put(ctx, record); err != nil {
		return models.PunchRecord{}, fmt.Errorf("store punch record: %w", err)
	}

	p.log.Info().Str("func", "punchService.CreatePunch").
		Str("recordID", record.ID).
		Str("type", string(record.Type)).
		Msg("punch recorded")

	return record, nil
}

func (p *punchService) CreateAutoPunchOut(ctx context.Context, userID string) (models.PunchRecord, error) {
	if userID == "" {
		userID = p.defaultUserID
	}
	if userID == "" {
		return models.PunchRecord{}, ErrNoUserID
	}

	record := models.PunchRecord{
		ID:        p.newID(),
		UserID:    userID,
		Type:      models.PunchOut,
		Timestamp: p.now(),
		Synced:    false,
	}

	if err := p.storage.Records().Put(ctx, record); err != nil {
		return models.PunchRecord{}, fmt.Errorf("store auto punch record: %w", err)
	}

	p.log.Info().Str("func", "punchService.CreateAutoPunchOut").
		Str("recordID", record.ID).
		Str("userID", userID).
		Msg("automatic checkout recorded")

	return record, nil
}

func (p *punchService) Records(ctx context.Context, userID string) ([]models.PunchRecord, error) {
	if userID == "" {
		userID = p.defaultUserID
	}
	return p.storage.Records().GetByUser(ctx, userID)
}

func (p *punchService) TodayRecords(ctx context.Context, userID string) ([]models.PunchRecord, error) {
	if userID == "" {
		userID = p.defaultUserID
	}

	now := p.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	records, err := p.storage.Records().GetByTimeRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	filtered := records[:0]
	for _, rec := range records {
		if rec.UserID == userID {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// UpdatePunch patches the local record and, for records the remote store
// already holds, queues the same patch for remote application. Unsynced
// records need no queue entry since the upload phase will carry the new
// state anyway.
func (p *punchService) UpdatePunch(ctx context.Context, id string, fields map[string]any) error {
	record, err := p.storage.Records().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load punch record: %w", err)
	}

	applyPatch(&record, fields)

	if err = p.storage.Records().Put(ctx, record); err != nil {
		return fmt.Errorf("store updated punch record: %w", err)
	}

	if !record.Synced {
		return nil
	}

	payload, err := models.NewMutationPayload(id, fields)
	if err != nil {
		return fmt.Errorf("encode update mutation: %w", err)
	}
	if _, err = p.storage.Queue().Enqueue(ctx, models.ActionUpdate, payload); err != nil {
		return fmt.Errorf("queue update mutation: %w", err)
	}

	return nil
}

// DeletePunch removes the local record and, for records the remote store
// already holds, queues a remote delete.
func (p *punchService) DeletePunch(ctx context.Context, id string) error {
	record, err := p.storage.Records().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load punch record: %w", err)
	}

	if err = p.storage.Records().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete punch record: %w", err)
	}

	if !record.Synced {
		return nil
	}

	payload, err := models.NewMutationPayload(id, nil)
	if err != nil {
		return fmt.Errorf("encode delete mutation: %w", err)
	}
	if _, err = p.storage.Queue().Enqueue(ctx, models.ActionDelete, payload); err != nil {
		return fmt.Errorf("queue delete mutation: %w", err)
	}

	return nil
}

func (p *punchService) Stats(ctx context.Context) (models.StoreStats, error) {
	return p.storage.Stats(ctx)
}

func (p *punchService) Logout(ctx context.Context) error {
	if err := p.storage.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear local state: %w", err)
	}

	p.log.Info().Str("func", "punchService.Logout").Msg("local state cleared")
	return nil
}

func (p *punchService) checkGeofence(pos *models.Position) error {
	if !p.geofence.Enabled || len(p.geofence.Zones) == 0 {
		return nil
	}
	if pos == nil {
		return ErrLocationRequired
	}

	result := geo.ValidateLocation(*pos, p.geofence.Zones, p.geofence.RadiusMeters)
	if !result.Valid {
		return fmt.Errorf("%w: %.0f m from %s", ErrOutsideAllowedZone, result.Distance, result.Nearest.Name)
	}

	return nil
}

// applyPatch copies the mutable fields of a patch onto the record. The id
// is immutable so it is never taken from the patch.
func applyPatch(record *models.PunchRecord, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "type":
			if v, ok := value.(string); ok {
				record.Type = models.PunchType(v)
			}
		case "photo":
			if v, ok := value.(string); ok {
				record.Photo = v
			}
		case "timestamp":
			switch v := value.(type) {
			case time.Time:
				record.Timestamp = v
			case string:
				if parsed, err := time.Parse(time.RFC3339, v); err == nil {
					record.Timestamp = parsed
				}
			}
		}
	}
}

// newRecordID returns a time-ordered UUID, falling back to a random one if
// v7 generation fails.
func newRecordID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}
