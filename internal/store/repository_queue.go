package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/models"
)

type syncQueueRepository struct {
	*DB
	logger *logger.Logger
}

func NewSyncQueueRepository(db *DB, logger *logger.Logger) SyncQueueRepository {
	return &syncQueueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *syncQueueRepository) Enqueue(ctx context.Context, action models.SyncAction, data json.RawMessage) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("sync_queue").
		Columns("action", "data", "timestamp", "retries").
		Values(string(action), string(data), time.Now(), 0).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.Enqueue").
			Str("action", string(action)).
			Msg("failed to execute insert for sync queue item")
		return 0, fmt.Errorf("failed to enqueue sync intent: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sync queue item id: %w", err)
	}

	return id, nil
}

func (q *syncQueueRepository) List(ctx context.Context) ([]models.SyncQueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("id", "action", "data", "timestamp", "retries").
		From("sync_queue").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.List").
			Msg("failed to execute query for sync queue")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem

	for rows.Next() {
		var item models.SyncQueueItem
		var action, data string

		scanErr := rows.Scan(&item.ID, &action, &data, &item.Timestamp, &item.Retries)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "syncQueueRepository.List").
				Msg("failed to scan sync queue row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		item.Action = models.SyncAction(action)
		item.Data = json.RawMessage(data)
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "syncQueueRepository.List").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating sync queue rows: %w", rowsErr)
	}

	return items, nil
}

func (q *syncQueueRepository) Dequeue(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("sync_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.Dequeue").
			Int64("id", id).
			Msg("failed to execute delete for sync queue item")
		return fmt.Errorf("failed to dequeue sync intent (id=%d): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%d): %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w (id=%d)", ErrQueueItemNotFound, id)
	}

	return nil
}

func (q *syncQueueRepository) IncrementRetries(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Update("sync_queue").
		Set("retries", sq.Expr("retries + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.IncrementRetries").
			Int64("id", id).
			Msg("failed to execute retry counter update")
		return fmt.Errorf("failed to increment retries (id=%d): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%d): %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w (id=%d)", ErrQueueItemNotFound, id)
	}

	return nil
}
