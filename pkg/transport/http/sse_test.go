package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bmertz/falpipe/pkg/api"
)

func TestWriteStatusSSEFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	ev := api.NewSubmittingStatus("fal-ai/z-image/turbo")
	if err := sw.WriteStatus(context.Background(), ev); err != nil {
		t.Fatalf("WriteStatus error: %v", err)
	}

	body := rec.Body.String()

	// Check SSE format: event: status\ndata: {json}\n\n
	if !strings.Contains(body, "event: status\n") {
		t.Errorf("missing event type line in:\n%s", body)
	}
	if !strings.Contains(body, "data: ") {
		t.Errorf("missing data line in:\n%s", body)
	}

	// Extract and parse the JSON data.
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			jsonStr := strings.TrimPrefix(line, "data: ")
			var got api.StatusEvent
			if err := json.Unmarshal([]byte(jsonStr), &got); err != nil {
				t.Fatalf("failed to parse status JSON: %v", err)
			}
			if got.Description != "Generating image with fal-ai/z-image/turbo..." {
				t.Errorf("description = %q, want submitting text", got.Description)
			}
			if got.Done {
				t.Error("submitting status should not be done")
			}
		}
	}
}

func TestWriteStatusSSEHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	sw.WriteStatus(context.Background(), api.NewSubmittingStatus("fal-ai/flux-2-pro"))

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want %q", cc, "no-cache")
	}
	if conn := rec.Header().Get("Connection"); conn != "keep-alive" {
		t.Errorf("Connection = %q, want %q", conn, "keep-alive")
	}
}

func TestWriteResultSendsDone(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	resp := &api.PipeResponse{
		ID:      "gen_abc123",
		Object:  api.ObjectPipeResponse,
		Model:   "falai-z-image",
		Content: "![Generated Image](https://fal.media/files/fox.png)",
		Status:  api.PipeStatusCompleted,
	}
	if err := sw.WriteResult(context.Background(), resp); err != nil {
		t.Fatalf("WriteResult error: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: result\n") {
		t.Errorf("missing result event line in:\n%s", body)
	}
	if !strings.Contains(body, "data: [DONE]\n") {
		t.Errorf("missing [DONE] sentinel in:\n%s", body)
	}
	if !strings.Contains(body, `"id":"gen_abc123"`) {
		t.Errorf("missing response envelope in:\n%s", body)
	}
}

func TestDoneStatusDoesNotCloseStream(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	// A done=true status is informational; the stream stays open for the
	// result frame.
	if err := sw.WriteStatus(context.Background(), api.NewSucceededStatus()); err != nil {
		t.Fatalf("WriteStatus error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "data: [DONE]\n") {
		t.Error("done status must not emit the [DONE] sentinel")
	}

	resp := &api.PipeResponse{ID: "gen_after", Object: api.ObjectPipeResponse}
	if err := sw.WriteResult(context.Background(), resp); err != nil {
		t.Errorf("WriteResult after done status error: %v", err)
	}
}

func TestWriteStatusAfterResultReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	sw.WriteResult(context.Background(), &api.PipeResponse{ID: "gen_x"})

	err := sw.WriteStatus(context.Background(), api.NewSucceededStatus())
	if err == nil {
		t.Error("expected error for status after result, got nil")
	}
}

func TestWriteResultTwiceReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	if err := sw.WriteResult(context.Background(), &api.PipeResponse{ID: "gen_one"}); err != nil {
		t.Fatalf("first WriteResult error: %v", err)
	}
	if err := sw.WriteResult(context.Background(), &api.PipeResponse{ID: "gen_two"}); err == nil {
		t.Error("expected error for second result, got nil")
	}

	if got := strings.Count(rec.Body.String(), "event: result\n"); got != 1 {
		t.Errorf("result frames = %d, want 1", got)
	}
}

func TestResultOnlyStreamSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	// Streams with no status frames still carry SSE headers.
	sw.WriteResult(context.Background(), &api.PipeResponse{ID: "gen_solo"})

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}
}

func TestFrameOrdering(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusStreamWriter(rec)

	sw.WriteStatus(context.Background(), api.NewSubmittingStatus("fal-ai/recraft/v3/text-to-image"))
	sw.WriteStatus(context.Background(), api.NewFailedStatus("Error: something"))
	sw.WriteResult(context.Background(), &api.PipeResponse{
		ID:      "gen_fail",
		Content: "Error: something",
		Status:  api.PipeStatusFailed,
	})

	body := rec.Body.String()
	first := strings.Index(body, "event: status\n")
	last := strings.LastIndex(body, "event: status\n")
	resultAt := strings.Index(body, "event: result\n")
	doneAt := strings.Index(body, "data: [DONE]\n")

	if first < 0 || last < 0 || resultAt < 0 || doneAt < 0 {
		t.Fatalf("missing frames in:\n%s", body)
	}
	if !(first < last && last < resultAt && resultAt < doneAt) {
		t.Errorf("frames out of order in:\n%s", body)
	}
}
