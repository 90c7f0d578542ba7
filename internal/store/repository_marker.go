package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iplaycheck/go-punch-clock/internal/logger"
)

type autopunchMarkerRepository struct {
	*DB
	logger *logger.Logger
}

func NewAutopunchMarkerRepository(db *DB, logger *logger.Logger) AutopunchMarkerRepository {
	return &autopunchMarkerRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *autopunchMarkerRepository) LastRun(ctx context.Context, userID string) (string, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("day").
		From("autopunch_markers").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var day string
	scanErr := m.DB.QueryRowContext(ctx, query, args...).Scan(&day)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return "", ErrMarkerNotFound
		}
		log.Err(scanErr).
			Str("func", "autopunchMarkerRepository.LastRun").
			Str("user_id", userID).
			Msg("failed to scan autopunch marker row")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return day, nil
}

func (m *autopunchMarkerRepository) MarkRun(ctx context.Context, userID string, day string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("autopunch_markers").
		Columns("user_id", "day", "updated_at").
		Values(userID, day, time.Now()).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
			day        = excluded.day,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = m.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "autopunchMarkerRepository.MarkRun").
			Str("user_id", userID).
			Str("day", day).
			Msg("failed to execute upsert for autopunch marker")
		return fmt.Errorf("failed to mark autopunch run (user_id=%s): %w", userID, err)
	}

	return nil
}
