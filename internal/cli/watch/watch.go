// --- START OF FINAL REVISED FILE internal/cli/watch/watch.go ---
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatch indicates the snapshot file could not be watched.
var ErrWatch = errors.New("watch error")

// Watcher reports bursts of changes to a single snapshot file.
// The parent directory is watched so that editors replacing the file on save are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher
	logger   *slog.Logger
}

// New starts watching path. Call Close when done.
func New(path string, debounce time.Duration, loggerHandler slog.Handler) (*Watcher, error) {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "watcher"))

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving '%s': %v", ErrWatch, path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: creating watcher: %v", ErrWatch, err)
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("%w: watching directory of '%s': %v", ErrWatch, absPath, err)
	}
	if debounce < 0 {
		debounce = 0
	}
	logger.Debug("Watching snapshot", slog.String("path", absPath), slog.Duration("debounce", debounce))
	return &Watcher{path: absPath, debounce: debounce, fw: fw, logger: logger}, nil
}

// Run calls onChange once per burst of writes to the watched file, after the
// debounce delay has passed without further writes. Errors from onChange are
// logged and watching continues. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("Snapshot event", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", slog.Any("error", err))

		case <-fire:
			fire = nil
			w.logger.Info("Snapshot changed", slog.String("path", w.path))
			if err := onChange(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Re-scan after change failed", slog.Any("error", err))
			}
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// --- END OF FINAL REVISED FILE internal/cli/watch/watch.go ---
