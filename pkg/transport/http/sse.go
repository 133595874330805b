package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bmertz/falpipe/pkg/api"
)

// writerState tracks the state of a statusStreamWriter.
type writerState int

const (
	writerIdle      writerState = iota // Initial state, no writes yet
	writerStreaming                    // At least one frame written
	writerCompleted                    // Result frame sent, stream closed
)

// statusStreamWriter renders a pipe invocation as an SSE stream: zero or
// more "status" frames while the generation runs, then exactly one "result"
// frame followed by the [DONE] sentinel.
//
// A done=true status frame does not close the stream; only the result frame
// is wire-terminal. Invocations that fail before dispatch produce a stream
// whose only frame is the result.
type statusStreamWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu    sync.Mutex
	state writerState
}

// newStatusStreamWriter creates a stream writer over an http.ResponseWriter.
func newStatusStreamWriter(w http.ResponseWriter) *statusStreamWriter {
	return &statusStreamWriter{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// WriteStatus sends one status frame:
//
//	event: status\n
//	data: {json}\n
//	\n
func (s *statusStreamWriter) WriteStatus(_ context.Context, ev api.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerCompleted {
		return errors.New("cannot write status: stream is completed")
	}
	if err := s.beginStreamLocked(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", api.EventStatus, data); err != nil {
		return fmt.Errorf("failed to write status event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// WriteResult sends the terminal result frame and the [DONE] sentinel:
//
//	event: result\n
//	data: {json}\n
//	\n
//	data: [DONE]\n
//	\n
func (s *statusStreamWriter) WriteResult(_ context.Context, resp *api.PipeResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerCompleted {
		return errors.New("cannot write result: stream is completed")
	}
	if err := s.beginStreamLocked(); err != nil {
		return err
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", api.EventResult, data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write [DONE]: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	s.state = writerCompleted
	return nil
}

// beginStreamLocked sets the SSE headers on the first frame. Callers hold mu.
func (s *statusStreamWriter) beginStreamLocked() error {
	if s.state != writerIdle {
		return nil
	}
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.state = writerStreaming
	return nil
}
