package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tunebot/internal/config"
	"tunebot/internal/logging"
	"tunebot/internal/notifications"
)

// Dispatcher is the polling loop the daemon supervises. Satisfied by
// *bot.Dispatcher.
type Dispatcher interface {
	Run(ctx context.Context) error
}

// Closer matches the delivery cache store. nil when caching is disabled.
type Closer interface {
	Close() error
}

// Session matches the Telegram client; Close idles its connection pools.
type Session interface {
	Close()
}

// Option configures optional daemon attributes.
type Option func(*Daemon)

// WithUsername records the bot's Telegram username for start notifications.
func WithUsername(username string) Option {
	return func(d *Daemon) {
		d.username = username
	}
}

// Daemon owns the dispatcher lifecycle and the shutdown ordering.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher Dispatcher
	store      Closer
	session    Session
	notifier   notifications.Service
	username   string

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	shutdownOnce sync.Once
}

// New constructs a daemon with initialized dependencies. store may be nil
// when the delivery cache is disabled; notifier may be nil.
func New(cfg *config.Config, dispatcher Dispatcher, store Closer, session Session, notifier notifications.Service, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || dispatcher == nil || session == nil {
		return nil, errors.New("daemon requires config, dispatcher, and session")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "tunebot.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		dispatcher: dispatcher,
		store:      store,
		session:    session,
		notifier:   notifier,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the single-instance lock and launches the dispatcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tunebot instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.startedAt = time.Now()
	d.running.Store(true)

	go func() {
		defer close(d.done)
		if err := d.dispatcher.Run(runCtx); err != nil {
			d.logger.Error("dispatcher exited", logging.Error(err))
		}
	}()

	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	if err := d.notifier.NotifyBotStarted(ctx, d.username); err != nil {
		d.logger.Warn("start notification failed", logging.Error(err))
	}
	return nil
}

// Wait blocks until the dispatcher loop returns.
func (d *Daemon) Wait() {
	if d.done != nil {
		<-d.done
	}
}

// Shutdown stops everything exactly once, in fixed order. Safe to call
// from multiple paths; later calls are no-ops.
func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(d.shutdown)
}

func (d *Daemon) shutdown() {
	if !d.running.Load() {
		return
	}
	d.logger.Info("daemon shutting down")

	if d.cancel != nil {
		d.cancel()
	}
	d.Wait()

	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("close delivery cache failed", logging.Error(err))
		}
	}
	d.session.Close()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock failed", logging.Error(err))
	}

	uptime := time.Since(d.startedAt)
	if err := d.notifier.NotifyBotStopped(context.Background(), uptime); err != nil {
		d.logger.Warn("stop notification failed", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped", logging.Duration("uptime", uptime))
}

// Running reports whether the daemon has started and not yet shut down.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
