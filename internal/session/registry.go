package session

import "sync"

// Registry serializes turns per conversation. No two turns of one session
// may interleave; turns of different sessions proceed in parallel.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry returns an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-session lock for id and returns its unlock func.
func (r *Registry) Lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Forget drops the lock entry for a finished session. Safe to call while
// no turn holds the lock.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
}
