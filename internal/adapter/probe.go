package adapter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
)

// HTTPProbe reports backend reachability by issuing a lightweight health
// request. Any HTTP response counts as online, including error statuses: a
// 500 still proves the network path works. Only transport failures count as
// offline.
type HTTPProbe struct {
	client *resty.Client
}

// NewHTTPProbe builds a Connectivity probe against the health endpoint of the
// given base URL.
func NewHTTPProbe(baseURL string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)

	return &HTTPProbe{client: cli}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	_, err := p.client.R().SetContext(ctx).Get("/api/health")
	return err == nil
}

// ConnectivityWatcher polls a Connectivity probe on an interval and publishes
// offline-to-online transitions on Online(). The sync engine subscribes to
// trigger an immediate pass when the connection comes back.
type ConnectivityWatcher struct {
	probe    Connectivity
	interval time.Duration
	log      *logger.Logger

	events chan struct{}

	mu      sync.Mutex
	started bool
	online  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConnectivityWatcher builds a stopped watcher. Call Start to begin
// polling.
func NewConnectivityWatcher(probe Connectivity, interval time.Duration, log *logger.Logger) *ConnectivityWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ConnectivityWatcher{
		probe:    probe,
		interval: interval,
		log:      log,
		events:   make(chan struct{}, 1),
	}
}

// Online returns the channel that receives a signal on every
// offline-to-online transition. The channel has a buffer of one; coalesced
// edges are fine because a single sync pass covers them all.
func (w *ConnectivityWatcher) Online() <-chan struct{} {
	return w.events
}

// IsOnline reports the most recent probe result.
func (w *ConnectivityWatcher) IsOnline() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Start begins polling. Calling Start on a running watcher is a no-op.
func (w *ConnectivityWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.online = w.probe.Online(runCtx)
	w.log.Info().Str("func", "ConnectivityWatcher.Start").Bool("online", w.online).Msg("connectivity watcher started")

	w.wg.Add(1)
	go w.loop(runCtx)
}

// Stop halts polling and waits for the poll loop to exit.
func (w *ConnectivityWatcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *ConnectivityWatcher) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ConnectivityWatcher) check(ctx context.Context) {
	online := w.probe.Online(ctx)

	w.mu.Lock()
	wasOnline := w.online
	w.online = online
	w.mu.Unlock()

	if online && !wasOnline {
		w.log.Info().Str("func", "ConnectivityWatcher.check").Msg("connection restored")
		select {
		case w.events <- struct{}{}:
		default:
		}
	}
}
