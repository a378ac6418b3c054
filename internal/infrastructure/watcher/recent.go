package watcher

import (
	"path/filepath"
	"sync"
	"time"
)

// Recent remembers paths the organizer itself created in the watched
// directory, so their notifications are not fed back into the pipeline.
type Recent struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	paths map[string]time.Time
}

func NewRecent(ttl time.Duration) *Recent {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Recent{ttl: ttl, now: time.Now, paths: make(map[string]time.Time)}
}

func (r *Recent) Add(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for _, p := range paths {
		if p != "" {
			r.paths[filepath.Clean(p)] = now
		}
	}
}

// Contains reports whether path was added within the ttl. Expired entries
// are dropped as a side effect.
func (r *Recent) Contains(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for p, added := range r.paths {
		if now.Sub(added) > r.ttl {
			delete(r.paths, p)
		}
	}
	_, ok := r.paths[filepath.Clean(path)]
	return ok
}

// Drain hands every emitted path to handle, except paths that an earlier
// handle call reported as produced. It returns when paths is closed.
func Drain(paths <-chan string, recent *Recent, handle func(path string) (produced []string)) {
	for path := range paths {
		if recent.Contains(path) {
			continue
		}
		recent.Add(handle(path)...)
	}
}
