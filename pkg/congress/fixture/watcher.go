package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long a watcher waits for writes to settle
// before reloading.
const DefaultDebounceInterval = 100 * time.Millisecond

// watcher watches one file for changes. It watches the parent directory so
// that editors which replace the file by rename are still observed.
type watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce *debouncer
	logger   *slog.Logger
}

func newWatcher(path string, interval time.Duration, logger *slog.Logger) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	return &watcher{
		path:     abs,
		fsw:      fsw,
		debounce: newDebouncer(interval),
		logger:   logger,
	}, nil
}

// run processes events until ctx is cancelled, calling onChange after each
// settled burst of writes.
func (w *watcher) run(ctx context.Context, onChange func()) error {
	defer func() {
		w.debounce.stop()
		w.fsw.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("fixture watcher stopped", "path", w.path)
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("fixture event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			w.debounce.trigger(onChange)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fixture watcher error", "error", err)
		}
	}
}

func (w *watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

// debouncer collapses rapid triggers into one callback after a quiet period.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration) *debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			callback()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
