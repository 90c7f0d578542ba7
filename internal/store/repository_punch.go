package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/models"
)

var punchRecordColumns = []string{
	"id",
	"user_id",
	"type",
	"timestamp",
	"photo",
	"latitude",
	"longitude",
	"accuracy",
	"synced",
	"synced_at",
}

type punchRecordRepository struct {
	*DB
	logger *logger.Logger
}

func NewPunchRecordRepository(db *DB, logger *logger.Logger) PunchRecordRepository {
	return &punchRecordRepository{
		DB:     db,
		logger: logger,
	}
}

func (p *punchRecordRepository) Put(ctx context.Context, record models.PunchRecord) error {
	log := logger.FromContext(ctx)

	var lat, lon, acc any
	if record.Location != nil {
		lat, lon, acc = record.Location.Latitude, record.Location.Longitude, record.Location.Accuracy
	}

	var syncedAt any
	if record.SyncedAt != nil {
		syncedAt = *record.SyncedAt
	}

	query, args, err := sq.Insert("punch_records").
		Columns(punchRecordColumns...).
		Values(
			record.ID,
			record.UserID,
			record.Type,
			record.Timestamp,
			record.Photo,
			lat,
			lon,
			acc,
			record.Synced,
			syncedAt,
		).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			user_id   = excluded.user_id,
			type      = excluded.type,
			timestamp = excluded.timestamp,
			photo     = excluded.photo,
			latitude  = excluded.latitude,
			longitude = excluded.longitude,
			accuracy  = excluded.accuracy,
			synced    = excluded.synced,
			synced_at = excluded.synced_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = p.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "punchRecordRepository.Put").
			Str("id", record.ID).
			Str("user_id", record.UserID).
			Msg("failed to execute upsert for punch record")
		return fmt.Errorf("failed to save punch record (id=%s): %w", record.ID, err)
	}

	return nil
}

func (p *punchRecordRepository) Get(ctx context.Context, id string) (models.PunchRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(punchRecordColumns...).
		From("punch_records").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.PunchRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, scanErr := scanPunchRecord(p.DB.QueryRowContext(ctx, query, args...))
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return models.PunchRecord{}, ErrRecordNotFound
		}
		log.Err(scanErr).
			Str("func", "punchRecordRepository.Get").
			Str("id", id).
			Msg("failed to scan punch record row")
		return models.PunchRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return record, nil
}

func (p *punchRecordRepository) GetAll(ctx context.Context) ([]models.PunchRecord, error) {
	builder := sq.Select(punchRecordColumns...).
		From("punch_records").
		OrderBy("timestamp ASC")

	return p.queryRecords(ctx, "punchRecordRepository.GetAll", builder)
}

func (p *punchRecordRepository) GetByUser(ctx context.Context, userID string) ([]models.PunchRecord, error) {
	builder := sq.Select(punchRecordColumns...).
		From("punch_records").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("timestamp ASC")

	return p.queryRecords(ctx, "punchRecordRepository.GetByUser", builder)
}

func (p *punchRecordRepository) GetUnsynced(ctx context.Context) ([]models.PunchRecord, error) {
	builder := sq.Select(punchRecordColumns...).
		From("punch_records").
		Where(sq.Eq{"synced": false}).
		OrderBy("timestamp ASC")

	return p.queryRecords(ctx, "punchRecordRepository.GetUnsynced", builder)
}

func (p *punchRecordRepository) GetByTimeRange(ctx context.Context, start, end time.Time) ([]models.PunchRecord, error) {
	builder := sq.Select(punchRecordColumns...).
		From("punch_records").
		Where(sq.And{
			sq.GtOrEq{"timestamp": start},
			sq.LtOrEq{"timestamp": end},
		}).
		OrderBy("timestamp ASC")

	return p.queryRecords(ctx, "punchRecordRepository.GetByTimeRange", builder)
}

func (p *punchRecordRepository) MarkSynced(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Update("punch_records").
		Set("synced", true).
		Set("synced_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := p.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "punchRecordRepository.MarkSynced").
			Str("id", id).
			Msg("failed to execute synced flag update")
		return fmt.Errorf("failed to mark record synced (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		log.Warn().
			Str("func", "punchRecordRepository.MarkSynced").
			Str("id", id).
			Msg("no rows affected during synced flag update: record not found")
		return fmt.Errorf("%w (id=%s)", ErrRecordNotFound, id)
	}

	return nil
}

func (p *punchRecordRepository) ReplacePhoto(ctx context.Context, id string, url string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Update("punch_records").
		Set("photo", url).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := p.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "punchRecordRepository.ReplacePhoto").
			Str("id", id).
			Msg("failed to execute photo replacement")
		return fmt.Errorf("failed to replace photo (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w (id=%s)", ErrRecordNotFound, id)
	}

	return nil
}

func (p *punchRecordRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("punch_records").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = p.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "punchRecordRepository.Delete").
			Str("id", id).
			Msg("failed to execute delete for punch record")
		return fmt.Errorf("failed to delete punch record (id=%s): %w", id, err)
	}

	return nil
}

func (p *punchRecordRepository) queryRecords(ctx context.Context, caller string, builder sq.SelectBuilder) ([]models.PunchRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", caller).
			Msg("failed to execute query for punch records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.PunchRecord

	for rows.Next() {
		record, scanErr := scanPunchRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Msg("failed to scan punch record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating punch record rows: %w", rowsErr)
	}

	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPunchRecord(row rowScanner) (models.PunchRecord, error) {
	var (
		record   models.PunchRecord
		lat      sql.NullFloat64
		lon      sql.NullFloat64
		acc      sql.NullFloat64
		syncedAt sql.NullTime
	)

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Type,
		&record.Timestamp,
		&record.Photo,
		&lat,
		&lon,
		&acc,
		&record.Synced,
		&syncedAt,
	)
	if err != nil {
		return models.PunchRecord{}, err
	}

	if lat.Valid && lon.Valid {
		record.Location = &models.Position{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Accuracy:  acc.Float64,
		}
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		record.SyncedAt = &t
	}

	return record, nil
}
