package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/iplaycheck/go-punch-clock/internal/config"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/models"
)

type localStorages struct {
	db      *DB
	records PunchRecordRepository
	queue   SyncQueueRepository
	markers AutopunchMarkerRepository
	logger  *logger.Logger
}

// NewLocalStorages opens the SQLite database, applies pending migrations and
// wires the repositories.
func NewLocalStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (LocalStorage, error) {
	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("connect local database: %w", err)
	}

	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return &localStorages{
		db:      db,
		records: NewPunchRecordRepository(db, log),
		queue:   NewSyncQueueRepository(db, log),
		markers: NewAutopunchMarkerRepository(db, log),
		logger:  log,
	}, nil
}

func (s *localStorages) Records() PunchRecordRepository    { return s.records }
func (s *localStorages) Queue() SyncQueueRepository        { return s.queue }
func (s *localStorages) Markers() AutopunchMarkerRepository { return s.markers }

func (s *localStorages) ClearAll(ctx context.Context) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localStorages.ClearAll").
			Msg("failed to begin wipe transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"punch_records", "sync_queue", "autopunch_markers"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Err(err).
				Str("func", "localStorages.ClearAll").
				Str("table", table).
				Msg("failed to clear table")
			return fmt.Errorf("%w: clear %s: %w", ErrExecutingStatement, table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "localStorages.ClearAll").
			Msg("failed to commit wipe transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *localStorages) Stats(ctx context.Context) (models.StoreStats, error) {
	log := logger.FromContext(ctx)

	totalQuery, _, err := sq.Select("COUNT(*)").From("punch_records").ToSql()
	if err != nil {
		return models.StoreStats{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	pendingQuery, pendingArgs, err := sq.Select("COUNT(*)").
		From("punch_records").
		Where(sq.Eq{"synced": false}).
		ToSql()
	if err != nil {
		return models.StoreStats{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var stats models.StoreStats
	if err = s.db.QueryRowContext(ctx, totalQuery).Scan(&stats.TotalRecords); err != nil {
		log.Err(err).
			Str("func", "localStorages.Stats").
			Msg("failed to count punch records")
		return models.StoreStats{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if err = s.db.QueryRowContext(ctx, pendingQuery, pendingArgs...).Scan(&stats.PendingSync); err != nil {
		log.Err(err).
			Str("func", "localStorages.Stats").
			Msg("failed to count pending punch records")
		return models.StoreStats{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return stats, nil
}

func (s *localStorages) Close() error {
	return s.db.Close()
}
