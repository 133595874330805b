// Package provider defines the backend-agnostic interface for image
// generation backends and the argument construction shared by all of them.
// Each adapter implementation (e.g., fal) handles its own wire protocol
// internally; the engine sees only GenerationRequest and GenerationResult.
package provider
