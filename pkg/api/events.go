package api

import "fmt"

// StreamEventType identifies the type of a server-sent event on the
// streaming pipe surface.
type StreamEventType string

const (
	// EventStatus frames carry StatusEvent payloads while a generation runs.
	EventStatus StreamEventType = "status"
	// EventResult frames carry the single terminal PipeResult payload.
	EventResult StreamEventType = "result"
)

// StatusEvent is one progress report of a running pipe invocation. Done
// marks the terminal event; every dispatched invocation produces exactly
// one terminal event.
type StatusEvent struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// StatusSink receives status events during an invocation. Delivery is best
// effort: the pipe neither blocks on a sink nor lets a sink failure abort
// the request.
type StatusSink func(StatusEvent)

// NewSubmittingStatus is the non-terminal event emitted when a generation
// is handed to the backend.
func NewSubmittingStatus(target string) StatusEvent {
	return StatusEvent{Description: fmt.Sprintf("Generating image with %s...", target)}
}

// NewSucceededStatus is the terminal event of a successful generation.
func NewSucceededStatus() StatusEvent {
	return StatusEvent{Description: "Generation successful", Done: true}
}

// NewFailedStatus is the terminal event of a failed generation.
func NewFailedStatus(description string) StatusEvent {
	return StatusEvent{Description: description, Done: true}
}
