package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/iplaycheck/go-punch-clock/internal/adapter"
	"github.com/iplaycheck/go-punch-clock/internal/config"
	"github.com/iplaycheck/go-punch-clock/internal/logger"
	"github.com/iplaycheck/go-punch-clock/internal/service"
	"github.com/iplaycheck/go-punch-clock/internal/store"
	"github.com/iplaycheck/go-punch-clock/internal/workers"
)

// App owns every component of the punch-clock client and their shutdown
// order.
type App struct {
	cfg     *config.ClientConfig
	log     *logger.Logger
	storage store.LocalStorage
	gateway adapter.RemoteGateway

	Punches service.PunchService
	Engine  service.SyncEngine

	background *workers.Workers
}

// NewApp builds the full component graph from configuration: SQLite store
// (with migrations applied), HTTP gateway, connectivity watcher, sync engine
// and job, punch service and autopunch scheduler.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storage, err := store.NewLocalStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	gateway := adapter.NewHTTPRemoteGateway(adapter.HTTPGatewayConfig{
		BaseURL:      cfg.Gateway.BaseURL,
		MediaBaseURL: cfg.Gateway.MediaBaseURL,
		Token:        cfg.Gateway.Token,
		MediaAPIKey:  cfg.Gateway.MediaAPIKey,
		Timeout:      cfg.Gateway.RequestTimeout,
	})

	userID := cfg.User.ID
	if userID == "" {
		userID = gateway.UserID()
	}

	probe := adapter.NewHTTPProbe(cfg.Gateway.BaseURL, cfg.Gateway.RequestTimeout)
	watcher := adapter.NewConnectivityWatcher(probe, cfg.Sync.ProbeInterval, log)

	engine := service.NewSyncEngine(storage, gateway, probe, service.SyncEngineConfig{
		UserID:        userID,
		DownloadLimit: cfg.Sync.DownloadLimit,
		AutoSync:      true,
	}, log)

	punches := service.NewPunchService(storage, cfg.Geofence, userID, log)

	syncJob := service.NewSyncJob(engine, watcher.Online(), cfg.Sync.Interval, log)
	autopunch := service.NewAutopunchJob(punches, storage.Markers(), cfg.Autopunch, userID, log)

	return &App{
		cfg:        cfg,
		log:        log,
		storage:    storage,
		gateway:    gateway,
		Punches:    punches,
		Engine:     engine,
		background: workers.NewWorkers(watcher, syncJob, autopunch),
	}, nil
}

// Run starts the background workers and blocks until the context is
// cancelled or the process receives SIGINT/SIGTERM. An in-flight sync pass
// completes before Run returns; the next tick is suppressed.
func (a *App) Run(ctx context.Context) error {
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.background.Start(runCtx)
	a.log.Info().Str("func", "App.Run").Msg("punch clock client started")

	<-runCtx.Done()

	a.log.Info().Str("func", "App.Run").Msg("shutting down")
	a.background.Stop()

	if err := a.storage.Close(); err != nil {
		return fmt.Errorf("close local storage: %w", err)
	}

	return nil
}
