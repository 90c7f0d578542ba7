package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine is a SyncEngine stub that counts Run invocations.
type countingEngine struct {
	mu       sync.Mutex
	runs     int
	autoSync bool
}

func (c *countingEngine) Run(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	return nil
}

func (c *countingEngine) ForceRun(ctx context.Context) error { return c.Run(ctx) }

func (c *countingEngine) Status(_ context.Context) models.SyncStatus {
	return models.SyncStatus{AutoSyncEnabled: c.AutoSyncEnabled()}
}

func (c *countingEngine) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

func (c *countingEngine) AutoSyncEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoSync
}

func (c *countingEngine) AddListener(_ SyncListener) int { return 0 }
func (c *countingEngine) RemoveListener(_ int)           {}

func (c *countingEngine) runCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func waitForRuns(t *testing.T, engine *countingEngine, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if engine.runCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d sync runs, got %d", want, engine.runCount())
}

func TestSyncJob_RunsImmediatelyAndOnTicks(t *testing.T) {
	engine := &countingEngine{autoSync: true}
	job := NewSyncJob(engine, nil, 20*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	defer job.Stop()

	waitForRuns(t, engine, 2)
}

func TestSyncJob_SkipsWhileAutoSyncDisabled(t *testing.T) {
	engine := &countingEngine{autoSync: false}
	job := NewSyncJob(engine, nil, 10*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	defer job.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, engine.runCount())
}

func TestSyncJob_OnlineEdgeTriggersPass(t *testing.T) {
	engine := &countingEngine{autoSync: true}
	edges := make(chan struct{}, 1)
	job := NewSyncJob(engine, edges, time.Hour, logger.Nop())

	job.Start(context.Background())
	defer job.Stop()

	// One immediate pass on start.
	waitForRuns(t, engine, 1)

	edges <- struct{}{}
	waitForRuns(t, engine, 2)
}

func TestSyncJob_StopHaltsTicking(t *testing.T) {
	engine := &countingEngine{autoSync: true}
	job := NewSyncJob(engine, nil, 10*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	waitForRuns(t, engine, 1)
	job.Stop()

	runs := engine.runCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, runs, engine.runCount())
}

func TestSyncJob_StopBeforeStart(t *testing.T) {
	job := NewSyncJob(&countingEngine{}, nil, time.Second, logger.Nop())
	require.NotPanics(t, func() { job.Stop() })
}
