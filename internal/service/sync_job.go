package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iplaycheck/go-punch-clock/internal/logger"
)

type SyncJob struct {
	engine      SyncEngine
	onlineEdges <-chan struct{}
	interval    time.Duration
	log         *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a background job that runs a sync pass immediately on
// Start, then on every interval tick, and additionally whenever the
// connectivity watcher signals that the connection came back. Passes are
// skipped while auto-sync is toggled off on the engine. The job is idle
// until Start is called.
//
// onlineEdges may be nil when no connectivity watcher is wired.
func NewSyncJob(engine SyncEngine, onlineEdges <-chan struct{}, interval time.Duration, log *logger.Logger) *SyncJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SyncJob{engine: engine, onlineEdges: onlineEdges, interval: interval, log: log}
}

// Start launches the background goroutine. Any previously running job is
// stopped first.
func (j *SyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()

		t := time.NewTicker(j.interval)
		defer t.Stop()

		j.runPass(jobCtx)

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runPass(jobCtx)
			case <-j.onlineEdges:
				j.log.Info().Str("func", "SyncJob").Msg("connection restored, syncing")
				j.runPass(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the job is not running.
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *SyncJob) runPass(ctx context.Context) {
	if !j.engine.AutoSyncEnabled() {
		return
	}

	err := j.engine.Run(ctx)
	if err == nil || errors.Is(err, ErrSyncInProgress) || errors.Is(err, ErrOffline) {
		return
	}
	j.log.Err(err).Str("func", "SyncJob.runPass").Msg("sync pass failed")
}
