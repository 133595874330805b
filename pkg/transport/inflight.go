package transport

import (
	"sync"
	"time"
)

// InFlightRegistry tracks running pipe invocations. Generations are never
// cancelled once dispatched, so the registry exists for visibility: the
// health endpoint reports how many generations are active, and shutdown
// logging can name what is still running.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu     sync.Mutex
	active map[string]time.Time
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		active: make(map[string]time.Time),
	}
}

// Add records an invocation as running, keyed by its invocation ID.
func (r *InFlightRegistry) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = time.Now()
}

// Remove marks an invocation as finished. Removing an unknown ID is a no-op.
func (r *InFlightRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// Count returns the number of running invocations.
func (r *InFlightRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Oldest returns the ID and start time of the longest-running invocation.
// The third return is false when nothing is running.
func (r *InFlightRegistry) Oldest() (string, time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldestID string
	var oldestStart time.Time
	for id, start := range r.active {
		if oldestID == "" || start.Before(oldestStart) {
			oldestID = id
			oldestStart = start
		}
	}
	if oldestID == "" {
		return "", time.Time{}, false
	}
	return oldestID, oldestStart, true
}
