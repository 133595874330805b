package fal

import "time"

// DefaultQueueURL is the public fal.ai queue endpoint.
const DefaultQueueURL = "https://queue.fal.run"

// Config holds configuration for the fal queue adapter.
type Config struct {
	// QueueURL is the queue endpoint. Defaults to DefaultQueueURL.
	QueueURL string

	// Timeout for individual HTTP requests. Defaults to 120s. There is
	// no overall deadline for a generation; the caller's context bounds
	// the invocation as a whole.
	Timeout time.Duration

	// PollInterval between queue status checks. Defaults to 500ms.
	PollInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueURL:     DefaultQueueURL,
		Timeout:      120 * time.Second,
		PollInterval: 500 * time.Millisecond,
	}
}
