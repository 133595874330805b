// Package memory provides an in-memory settings.Store for tests and
// deployments that do not need settings to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/bmertz/falpipe/pkg/settings"
)

// Store holds the settings document in memory behind a mutex. Settings is a
// flat value type, so handing out copies gives callers true snapshots.
type Store struct {
	mu  sync.RWMutex
	doc settings.Settings
}

// Ensure Store implements settings.Store at compile time.
var _ settings.Store = (*Store)(nil)

// New creates a store seeded with the given document.
func New(initial settings.Settings) *Store {
	return &Store{doc: initial}
}

// Get returns a snapshot of the current document.
func (s *Store) Get(_ context.Context) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, nil
}

// Put replaces the document.
func (s *Store) Put(_ context.Context, doc settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
