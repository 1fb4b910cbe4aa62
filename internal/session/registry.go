// Package session owns the orchestrators of concurrent production sessions.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
)

// ErrUnknownSession is returned for a session id that is not registered.
var ErrUnknownSession = errors.New("unknown session")

// Factory builds the orchestrator of a new session. credential is the
// reasoning backend key to use; empty means the configured default.
type Factory func(id, credential string) (*orchestrator.Orchestrator, error)

// Registry maps session ids to orchestrators. Sessions never share state;
// the map is the only structure shared between them.
type Registry struct {
	factory Factory
	// sessions maps session IDs to orchestrators.
	sessions map[string]*orchestrator.Orchestrator
	// mu protects sessions.
	mu sync.RWMutex
}

// NewRegistry creates a Registry that builds sessions with factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*orchestrator.Orchestrator),
	}
}

// GetOrCreate returns the session's orchestrator, creating it on first use.
// The credential only matters when the session is created.
func (r *Registry) GetOrCreate(id, credential string) (*orchestrator.Orchestrator, error) {
	if id == "" {
		return nil, errors.New("session id is required")
	}

	r.mu.RLock()
	o, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return o, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.sessions[id]; ok {
		return o, nil
	}
	o, err := r.factory(id, credential)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}
	r.sessions[id] = o
	return o, nil
}

// Get returns a registered session.
func (r *Registry) Get(id string) (*orchestrator.Orchestrator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.sessions[id]
	return o, ok
}

// Reset clears a session's log, script, state and worker memories. Bus
// observers stay subscribed.
func (r *Registry) Reset(id string) error {
	o, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownSession)
	}
	o.Reset()
	return nil
}

// Dispose stops a session and removes it from the registry.
func (r *Registry) Dispose(id string) error {
	r.mu.Lock()
	o, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownSession)
	}
	o.Stop()
	return nil
}

// Stop halts a session without removing it.
func (r *Registry) Stop(id string) error {
	o, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownSession)
	}
	o.Stop()
	return nil
}

// StopAll halts every session.
func (r *Registry) StopAll() {
	r.mu.RLock()
	all := make([]*orchestrator.Orchestrator, 0, len(r.sessions))
	for _, o := range r.sessions {
		all = append(all, o)
	}
	r.mu.RUnlock()

	for _, o := range all {
		o.Stop()
	}
}

// IDs returns the registered session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
