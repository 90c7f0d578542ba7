package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iplaycheck/go-punch-clock/internal/config"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/internal/store"
	"github.com/iplaycheck/go-punch-clock/models"
)

const markerDayFormat = "2006-01-02"

// AutopunchJob watches the wall clock and synthesises a checkout when the
// user forgot to punch out by the configured cutoff time. It polls once a
// minute and fires only during the exact cutoff minute; a device that is off
// during that minute simply gets no automatic checkout that day.
type AutopunchJob struct {
	punches PunchService
	markers store.AutopunchMarkerRepository
	cfg     config.Autopunch
	userID  string
	log     *logger.Logger

	now func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutopunchJob builds a stopped scheduler for the given user.
func NewAutopunchJob(punches PunchService, markers store.AutopunchMarkerRepository, cfg config.Autopunch, userID string, log *logger.Logger) *AutopunchJob {
	return &AutopunchJob{
		punches: punches,
		markers: markers,
		cfg:     cfg,
		userID:  userID,
		log:     log,
		now:     time.Now,
	}
}

// Start launches the minute poll loop. Does nothing when the scheduler is
// disabled in configuration. Any previously running loop is stopped first.
func (a *AutopunchJob) Start(ctx context.Context) {
	if !a.cfg.Enabled {
		return
	}

	a.Stop()

	a.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		t := time.NewTicker(time.Minute)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				a.Tick(jobCtx)
			}
		}
	}()
}

// Stop cancels the poll loop and blocks until it has exited. Safe to call
// when the scheduler is not running.
func (a *AutopunchJob) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Tick evaluates the autopunch rule once. Exported so a wall-clock tick can
// be driven directly in tests.
func (a *AutopunchJob) Tick(ctx context.Context) {
	now := a.now()
	if now.Hour() != a.cfg.CutoffHour || now.Minute() != a.cfg.CutoffMinute {
		return
	}

	day := now.Format(markerDayFormat)

	lastRun, err := a.markers.LastRun(ctx, a.userID)
	if err != nil && !errors.Is(err, store.ErrMarkerNotFound) {
		a.log.Err(err).Str("func", "AutopunchJob.Tick").Msg("failed to read autopunch marker")
		return
	}
	if lastRun == day {
		return
	}

	if a.needsCheckout(ctx) {
		record, err := a.punches.CreateAutoPunchOut(ctx, a.userID)
		if err != nil {
			a.log.Err(err).Str("func", "AutopunchJob.Tick").Msg("failed to create automatic checkout")
			return
		}
		a.log.Info().Str("func", "AutopunchJob.Tick").Str("recordID", record.ID).Str("day", day).Msg("forgotten checkout closed automatically")
	}

	// Mark the day handled even when nothing needed closing, so a restart
	// within the cutoff minute cannot fire twice.
	if err = a.markers.MarkRun(ctx, a.userID, day); err != nil {
		a.log.Err(err).Str("func", "AutopunchJob.Tick").Msg("failed to write autopunch marker")
	}
}

// needsCheckout reports whether the user's day ends on an open check-in.
func (a *AutopunchJob) needsCheckout(ctx context.Context) bool {
	records, err := a.punches.TodayRecords(ctx, a.userID)
	if err != nil {
		a.log.Err(err).Str("func", "AutopunchJob.needsCheckout").Msg("failed to load today's records")
		return false
	}
	if len(records) == 0 {
		return false
	}

	last := records[len(records)-1]
	return last.Type == models.PunchIn
}
