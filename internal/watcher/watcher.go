// Package watcher keeps a root organized by running a pass whenever its
// contents settle after a change.
//
// The watcher holds the watch lock for its whole lifetime, so one-shot
// commands that mutate the root are excluded while it runs. Events are
// debounced: a burst of writes (a download in progress, an unpacking
// archive) triggers a single pass once the root goes quiet.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/workflow"
)

// Watcher owns the watch lock and triggers organizing passes when the
// root changes.
type Watcher struct {
	cfg      *config.Config
	manager  *workflow.Manager
	logger   *slog.Logger
	debounce time.Duration

	lock *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures optional watcher behavior.
type Option func(*Watcher)

// WithDebounce overrides the configured debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New constructs a watcher over the given manager.
func New(cfg *config.Config, manager *workflow.Manager, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if cfg == nil || manager == nil {
		return nil, errors.New("watcher requires config and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Watcher{
		cfg:      cfg,
		manager:  manager,
		logger:   logger.With(logging.String(logging.FieldComponent, "watcher")),
		debounce: time.Duration(cfg.Watch.DebounceSeconds) * time.Second,
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start acquires the watch lock and begins watching the root. It runs
// one catch-up pass immediately so files that arrived while the watcher
// was down get shelved without waiting for a new event.
func (w *Watcher) Start(ctx context.Context) error {
	if w.running.Load() {
		return errors.New("watcher already running")
	}

	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", w.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("another shelve instance is already organizing (lock %s)", w.lock.Path())
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		_ = w.lock.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Paths.Root); err != nil {
		_ = fsw.Close()
		_ = w.lock.Unlock()
		return fmt.Errorf("watch %s: %w", w.cfg.Paths.Root, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running.Store(true)

	w.wg.Add(1)
	go w.loop(runCtx, fsw)

	w.logger.Info("watching root",
		logging.String("root", w.cfg.Paths.Root),
		logging.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop terminates watching, waits for any in-flight pass, and releases
// the watch lock.
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.running.Store(false)
	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("failed to release watch lock", logging.Error(err))
	}
}

// Running reports whether the watcher currently holds the watch lock.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer func() { _ = fsw.Close() }()

	// Armed only while a debounce window is open.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected",
				logging.String(logging.FieldPath, event.Name),
				logging.String("op", event.Op.String()),
			)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))

		case <-timer.C:
			w.runPass(ctx)
		}
	}
}

// relevant filters events down to ones that can change what a scan sees.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	base := filepath.Base(event.Name)
	if !w.cfg.Scan.IncludeHidden && strings.HasPrefix(base, ".") {
		return false
	}
	return true
}

func (w *Watcher) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	pass, err := w.manager.RunPass(ctx)
	if err != nil {
		// A failed pass leaves the root intact, so keep watching; the
		// next change gets a fresh attempt.
		w.logger.Error("organizing pass failed", logging.Error(err))
		return
	}
	if moved := pass.Moved(); moved > 0 {
		w.logger.Info("organizing pass complete", logging.Int("files_moved", moved))
	}
}

// Lock acquires the watch lock for a one-shot mutating command. The
// caller must Unlock it when the command finishes.
func Lock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("another shelve instance is already organizing (lock %s)", lock.Path())
	}
	return lock, nil
}
