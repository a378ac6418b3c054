// Package watcher turns directory notifications into settled file paths.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSNotifyWatcher reports a path once no event touched it for the settle
// delay, so half-written downloads are not picked up.
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration
	logger  *slog.Logger
}

func NewFSNotifyWatcher(settle time.Duration, logger *slog.Logger) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if settle <= 0 {
		settle = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSNotifyWatcher{watcher: w, settle: settle, logger: logger}, nil
}

// Watch emits settled paths until ctx is done; the channel is then closed.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan string, 100)
	tick := w.settle / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		pending := make(map[string]time.Time)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				switch {
				case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
					pending[event.Name] = time.Now()
				case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
					delete(pending, event.Name)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher_error", "dir", dir, "error", err)
			case now := <-ticker.C:
				for _, path := range settled(pending, now, w.settle) {
					delete(pending, path)
					select {
					case out <- path:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}
