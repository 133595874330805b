package settings

import (
	"context"
	"errors"
)

// Sentinel errors for settings stores.
var (
	// ErrNotFound is returned when no settings document has been stored yet.
	ErrNotFound = errors.New("settings not found")
)

// Store persists the operator settings document. Implementations must return
// value snapshots from Get: a caller's copy never changes under it, even
// while a Put runs concurrently.
type Store interface {
	// Get returns the current settings document.
	Get(ctx context.Context) (Settings, error)

	// Put replaces the settings document.
	Put(ctx context.Context, doc Settings) error

	// HealthCheck reports whether the store can serve requests.
	HealthCheck(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
