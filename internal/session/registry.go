package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the session-handle set spec.md §9 recommends adding: a
// mutex-guarded map keyed by UUID, so the server can signal every live
// session on shutdown. It does not wait for their teardown (see
// ShutdownAll). Shape adapted from the
// teacher's internal/tunnel.Manager (map[string]*Tunnel guarded by
// sync.RWMutex, uuid.New() keys) — same concurrency pattern, applied to
// exec sessions instead of port-forwards.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// NewID mints a fresh session identifier.
func NewID() string {
	return uuid.New().String()
}

// Add registers sess under its ID.
func (r *Registry) Add(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// Remove drops sess from the registry, typically called once Run returns.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns the session for id, if still registered.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// List returns the IDs of every currently-registered session.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// ShutdownAll signals every registered session to tear down. It does not
// wait for them to finish: each session's Run call is driven by its own
// Handler Adapter goroutine, which returns and calls Remove on its own once
// Run unblocks, so this only needs to broadcast the signal, not await it.
func (r *Registry) ShutdownAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sess := range r.sessions {
		sess.Shutdown()
	}
}

// Count reports how many sessions are currently registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
