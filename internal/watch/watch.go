// Package watch reports changes under the active and archive roots.
//
// Events are debounced and delivered from a single goroutine, so the
// callback never runs concurrently with itself.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/danieljhkim/routemgr/internal/logging"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a fixed set of directories (non-recursively).
type Watcher struct {
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for dirs. A nil logger discards.
func New(dirs []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		logger:   logger,
	}
}

// Run blocks until ctx is done, calling onChange once per burst of events.
// An error returned by onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		if err := fw.Add(abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		w.logger.DebugContext(ctx, "watching directory", "dir", abs)
	}

	// fire is nil while no change is pending
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.DebugContext(ctx, "change detected", "path", event.Name, "op", event.Op.String())
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.logger.WarnContext(ctx, "change handler failed", logging.Error(err))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watcher error", logging.Error(err))
		}
	}
}
