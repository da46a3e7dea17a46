package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/config"
	"mindscribe/internal/ingest"
	"mindscribe/internal/logging"
)

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	app      *app.App
	practice *api.PracticeService
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running              bool
	PID                  int
	LockFilePath         string
	Address              string
	StoreBackend         string
	TranscriptionOffline bool
	LLMProvider          string
	Clients              int
	Sessions             int
	CachedViews          int
}

// New constructs a daemon over an assembled app.
func New(cfg *config.Config, a *app.App, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || a == nil {
		return nil, errors.New("daemon requires config and app")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		app:      a,
		practice: api.NewPracticeService(a.Store, func() *ingest.Flow { return a.NewFlow() }, a.Views, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.API.Bind, cfg.API.Token, d, logger)
	return d, nil
}

// Start acquires the lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mindscribe server is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("mindscribe daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop shuts down the API and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("mindscribe daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.app.Close()
}

// Address returns the bound listen address, empty when stopped.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Handler exposes the API handler, including middleware.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Status reports runtime information. Store counts are omitted when the
// store cannot be read.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:              d.running.Load(),
		PID:                  os.Getpid(),
		LockFilePath:         d.lockPath,
		Address:              d.api.address(),
		StoreBackend:         d.cfg.Store.Backend,
		TranscriptionOffline: d.app.TranscriptionOffline(),
		LLMProvider:          d.app.Provider(),
		CachedViews:          d.practice.CachedViews(),
	}
	if clients, err := d.app.Store.ListClients(ctx); err == nil {
		status.Clients = len(clients)
	} else {
		d.logger.Debug("status client count unavailable", logging.Error(err))
	}
	if sessions, err := d.app.Store.ListSessions(ctx, ""); err == nil {
		status.Sessions = len(sessions)
	} else {
		d.logger.Debug("status session count unavailable", logging.Error(err))
	}
	return status
}
