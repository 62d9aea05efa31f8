// Package realtime implements the live notification pipeline: the session
// registry mapping users to open transports, the websocket gateway that
// drives registry membership, the delivery endpoint other services call
// after persisting a notification record, and the client subscriber.
package realtime

import (
	"sync"

	"taskflow-backend/internal/common/logger"
)

// Handle is an opaque reference to one open realtime transport connection.
// Implementations must serialize concurrent sends.
type Handle interface {
	Send(event, data string) error
}

// Registry is the authoritative, process-wide mapping of reachable users.
// It is the single shared mutable resource of the pipeline; one mutex
// serializes all three operations so no caller observes a half-updated
// binding. Instances are injected into the gateway and the deliverer rather
// than held as package state.
type Registry struct {
	mu       sync.Mutex
	bindings map[string]Handle
	logger   logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		bindings: make(map[string]Handle),
		logger:   log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

// Register inserts or replaces the binding for userID. Last registration
// wins: a new handle silently supersedes the previous one without notifying
// the dropped connection. Repeated identical calls are idempotent.
func (r *Registry) Register(userID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.bindings[userID]; ok && prev != h {
		r.logger.Debug("binding superseded", map[string]interface{}{
			"userId": userID,
		})
	}
	r.bindings[userID] = h
}

// Unregister removes the binding holding exactly this handle. Removal matches
// on handle identity, not user id alone: handles are not globally unique
// across time, and a disconnect callback for a superseded connection must not
// evict the newer binding for the same user. A stale or unknown handle is a
// no-op.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, bound := range r.bindings {
		if bound == h {
			delete(r.bindings, userID)
			return
		}
	}
}

// Lookup returns the current handle for userID, if any. Pure in-memory read.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.bindings[userID]
	return h, ok
}

// Size returns the number of live bindings.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}
