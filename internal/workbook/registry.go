package workbook

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry guarantees at most one in-memory session per workbook name for
// the lifetime of the process. Concurrent first requests for the same name
// are collapsed into a single load.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	group    singleflight.Group
	opts     Options
}

// NewRegistry creates a registry that loads sessions with the given
// collaborators.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Get returns the session for the named workbook, loading it on first use.
// Repeated calls with the same name return the identical session.
func (r *Registry) Get(ctx context.Context, name string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[name]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		// Re-check under the flight: another caller may have loaded and
		// stored the session between our read and the Do.
		r.mu.RLock()
		s, ok := r.sessions[name]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		s, err := LoadSession(ctx, name, r.opts)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.sessions[name] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Peek returns the session if it is already loaded, without loading.
func (r *Registry) Peek(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Evict drops a session from the registry, stopping its auto-save watcher.
// Used after workbook deletion; a later Get loads a fresh instance.
func (r *Registry) Evict(name string) {
	r.mu.Lock()
	s, ok := r.sessions[name]
	delete(r.sessions, name)
	r.mu.Unlock()

	if ok {
		s.AutoSave().Disable()
	}
}

// Len returns the number of loaded sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
