package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iplaycheck/go-punch-clock/internal/config"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/models"
)

func newTestStorage(t *testing.T) LocalStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "punchclock_test.db")
	s, err := NewLocalStorages(context.Background(), config.Storage{DB: config.DB{Path: dbPath}}, logger.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(id, userID string, punchType models.PunchType, ts time.Time) models.PunchRecord {
	return models.PunchRecord{
		ID:        id,
		UserID:    userID,
		Type:      punchType,
		Timestamp: ts,
		Photo:     "data:image/jpeg;base64,AAAA",
		Location:  &models.Position{Latitude: 39.9042, Longitude: 116.4074, Accuracy: 12},
		Synced:    false,
	}
}

// ── Put / Get ───────────────────────────────────────────────────────────────

func TestPunchRecordRepository_PutAndGet_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	want := testRecord("r1", "u1", models.PunchIn, time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, s.Records().Put(ctx, want))

	got, err := s.Records().Get(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Type, got.Type)
	assert.True(t, want.Timestamp.Equal(got.Timestamp), "timestamp must survive the round trip")
	assert.Equal(t, want.Photo, got.Photo)
	require.NotNil(t, got.Location)
	assert.Equal(t, want.Location.Latitude, got.Location.Latitude)
	assert.Equal(t, want.Location.Longitude, got.Location.Longitude)
	assert.Equal(t, want.Location.Accuracy, got.Location.Accuracy)
	assert.False(t, got.Synced)
	assert.Nil(t, got.SyncedAt)
}

func TestPunchRecordRepository_Put_OverwritesById(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("r1", "u1", models.PunchIn, time.Now().UTC())
	require.NoError(t, s.Records().Put(ctx, rec))

	rec.Photo = "https://media.example/punch-r1.jpg"
	require.NoError(t, s.Records().Put(ctx, rec))

	all, err := s.Records().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "https://media.example/punch-r1.jpg", all[0].Photo)
}

func TestPunchRecordRepository_Put_NoLocation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("r1", "u1", models.PunchIn, time.Now().UTC())
	rec.Location = nil
	require.NoError(t, s.Records().Put(ctx, rec))

	got, err := s.Records().Get(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, got.Location)
}

func TestPunchRecordRepository_Get_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Records().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

// ── Queries ─────────────────────────────────────────────────────────────────

func TestPunchRecordRepository_GetByUser_FiltersOwner(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, now)))
	require.NoError(t, s.Records().Put(ctx, testRecord("r2", "u2", models.PunchIn, now)))
	require.NoError(t, s.Records().Put(ctx, testRecord("r3", "u1", models.PunchOut, now.Add(time.Minute))))

	records, err := s.Records().GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r3", records[1].ID)
}

func TestPunchRecordRepository_GetUnsynced_SkipsSynced(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, now)))
	require.NoError(t, s.Records().Put(ctx, testRecord("r2", "u1", models.PunchOut, now.Add(time.Minute))))
	require.NoError(t, s.Records().MarkSynced(ctx, "r1"))

	unsynced, err := s.Records().GetUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "r2", unsynced[0].ID)
}

func TestPunchRecordRepository_GetByTimeRange_BoundsInclusive(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, base)))
	require.NoError(t, s.Records().Put(ctx, testRecord("r2", "u1", models.PunchOut, base.Add(time.Hour))))
	require.NoError(t, s.Records().Put(ctx, testRecord("r3", "u1", models.PunchIn, base.Add(2*time.Hour))))

	records, err := s.Records().GetByTimeRange(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r2", records[1].ID)
}

// ── MarkSynced / ReplacePhoto / Delete ──────────────────────────────────────

func TestPunchRecordRepository_MarkSynced_SetsFlagAndTime(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, time.Now().UTC())))
	require.NoError(t, s.Records().MarkSynced(ctx, "r1"))

	got, err := s.Records().Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	require.NotNil(t, got.SyncedAt)
}

func TestPunchRecordRepository_MarkSynced_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, time.Now().UTC())))
	require.NoError(t, s.Records().MarkSynced(ctx, "r1"))
	require.NoError(t, s.Records().MarkSynced(ctx, "r1"))

	got, err := s.Records().Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.Synced)
}

func TestPunchRecordRepository_MarkSynced_NotFound(t *testing.T) {
	s := newTestStorage(t)

	err := s.Records().MarkSynced(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPunchRecordRepository_ReplacePhoto(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, time.Now().UTC())))
	require.NoError(t, s.Records().ReplacePhoto(ctx, "r1", "https://media.example/r1.jpg"))

	got, err := s.Records().Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example/r1.jpg", got.Photo)
	assert.False(t, got.HasInlinePhoto())
}

func TestPunchRecordRepository_Delete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Records().Put(ctx, testRecord("r1", "u1", models.PunchIn, time.Now().UTC())))
	require.NoError(t, s.Records().Delete(ctx, "r1"))

	_, err := s.Records().Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// Deleting an absent id stays silent.
	assert.NoError(t, s.Records().Delete(ctx, "r1"))
}
