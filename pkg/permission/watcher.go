package permission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PolicyFileWatcher watches the policy YAML file and reloads the manager
// when it changes. Rapid write bursts (editors often write a file several
// times on save) are debounced into a single reload.
type PolicyFileWatcher struct {
	watcher  *fsnotify.Watcher
	manager  *Manager
	path     string
	debounce *debouncer
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	started  bool
	stopOnce sync.Once
	stopErr  error
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPolicyFileWatcher creates a watcher for the policy file at path.
// A zero debounceInterval defaults to 100ms.
func NewPolicyFileWatcher(manager *Manager, path string, debounceInterval time.Duration, logger *slog.Logger) (*PolicyFileWatcher, error) {
	if debounceInterval <= 0 {
		debounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default().With("component", "policy-watcher")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &PolicyFileWatcher{
		watcher:  watcher,
		manager:  manager,
		path:     path,
		debounce: newDebouncer(debounceInterval),
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. The policy file is loaded once before watching starts
// so the manager reflects the file even when it never changes.
func (w *PolicyFileWatcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.started = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if _, err := w.manager.LoadPolicyFile(ctx, w.path); err != nil {
		w.logger.Error("initial policy load failed", "path", w.path, "error", err)
	}

	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("policy file watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.interval.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("policy file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("policy file event", "path", event.Name, "op", event.Op.String())

			w.debounce.trigger(func() {
				n, err := w.manager.LoadPolicyFile(context.Background(), w.path)
				if err != nil {
					w.logger.Error("policy reload failed", "path", w.path, "error", err)
					return
				}
				w.logger.Info("policies reloaded", "path", w.path, "policies", n)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite errors.
			w.logger.Error("policy file watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases the fsnotify descriptor. It waits
// for the event loop to exit, including when the loop already stopped on
// its own through context cancellation. Safe to call more than once.
func (w *PolicyFileWatcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()

		close(w.stopCh)
		if started {
			<-w.doneCh
		}
		w.debounce.stop()

		if err := w.watcher.Close(); err != nil {
			w.stopErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return w.stopErr
}

// debouncer collapses rapid event bursts into one callback after a quiet
// period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
	mu       sync.Mutex
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
