package wizard

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds live wizard sessions keyed by id. Sessions live only for
// the duration of one creation flow; there is nothing durable here.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Create makes a new session with a fresh id for the given user and
// registers it.
func (r *Registry) Create(userID uuid.UUID) *Session {
	s := NewSession(uuid.New(), userID)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id uuid.UUID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove unregisters and closes a session, cancelling any in-flight backend
// call scoped to it.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
}
