// Package engine implements the core pipe logic for falpipe. The Engine
// struct implements transport.PipeInvoker, bridging incoming chat-shaped
// requests to the image generation backend. It resolves the requested model
// against the registry, extracts the prompt from the conversation, builds
// the backend argument payload from the operator settings snapshot, and
// dispatches exactly one generation whose outcome it renders as a
// displayable result string. The pipe boundary never surfaces an error
// value: every failure becomes an "Error: ..." result.
package engine
