package provider

import "context"

// Provider abstracts an image-generation backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "fal").
	Name() string

	// Generate submits one generation and waits for its terminal result.
	// It returns an error for transport and backend failures; a nil error
	// with an empty image list is a valid backend outcome that callers
	// must handle themselves.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
