package integration

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/bmertz/falpipe/pkg/api"
)

func TestInvalidJSON(t *testing.T) {
	body := bytes.NewReader([]byte(`{invalid json`))
	resp, err := http.Post(
		testEnv.BaseURL()+"/v1/pipe",
		"application/json",
		body,
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		body := readBody(t, resp)
		t.Errorf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)

	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestUnsupportedContentType(t *testing.T) {
	body := bytes.NewReader([]byte(`model=test`))
	resp, err := http.Post(
		testEnv.BaseURL()+"/v1/pipe",
		"application/x-www-form-urlencoded",
		body,
	)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnsupportedMediaType {
		body := readBody(t, resp)
		t.Errorf("expected 415, got %d: %s", resp.StatusCode, body)
	}
}

func TestTooManyMessages(t *testing.T) {
	messages := make([]map[string]any, 1001)
	for i := range messages {
		messages[i] = map[string]any{"role": "user", "content": "hi"}
	}
	reqBody := map[string]any{
		"model":    "falai-z-image",
		"messages": messages,
	}

	resp := postJSON(t, testEnv.BaseURL()+"/v1/pipe", reqBody)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		body := readBody(t, resp)
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || !strings.Contains(errResp.Error.Message, "exceeds maximum") {
		t.Errorf("unexpected error payload: %+v", errResp.Error)
	}
}

func TestOversizedContent(t *testing.T) {
	reqBody := map[string]any{
		"model": "falai-z-image",
		"messages": []map[string]any{
			{"role": "user", "content": strings.Repeat("x", 1<<20+1)},
		},
	}

	resp := postJSON(t, testEnv.BaseURL()+"/v1/pipe", reqBody)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		body := readBody(t, resp)
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || !strings.Contains(errResp.Error.Message, "content exceeds maximum") {
		t.Errorf("unexpected error payload: %+v", errResp.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req, err := http.NewRequest(http.MethodDelete, testEnv.BaseURL()+"/v1/pipe", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		body := readBody(t, resp)
		t.Errorf("expected 405, got %d: %s", resp.StatusCode, body)
	}
}

func TestUnknownPath(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/v1/nonexistent")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		body := readBody(t, resp)
		t.Errorf("expected 404, got %d: %s", resp.StatusCode, body)
	}
}

// TestPipeFailuresAreHTTP200 pins the transport contract: semantic failures
// inside the pipe render as displayable result strings, never HTTP errors.
func TestPipeFailuresAreHTTP200(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/v1/pipe", pipeRequest("", "a cat", false))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBody(t, resp)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var pipeResp api.PipeResponse
	decodeJSON(t, resp, &pipeResp)
	if pipeResp.Status != api.PipeStatusFailed {
		t.Errorf("status = %q, want failed", pipeResp.Status)
	}
	if !strings.HasPrefix(pipeResp.Content, "Error: ") {
		t.Errorf("content = %q, want Error: prefix", pipeResp.Content)
	}
}

func TestErrorResponseFormat(t *testing.T) {
	// Any error response should follow the ErrorResponse schema.
	body := bytes.NewReader([]byte(`not json at all`))
	resp, err := http.Post(testEnv.BaseURL()+"/v1/pipe", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]any
	decodeJSON(t, resp, &raw)

	// Must have "error" key at top level.
	errObj, ok := raw["error"]
	if !ok {
		t.Fatal("response missing 'error' key")
	}

	errMap, ok := errObj.(map[string]any)
	if !ok {
		t.Fatal("'error' is not an object")
	}

	// Must have "type" and "message".
	if _, ok := errMap["type"]; !ok {
		t.Error("error object missing 'type'")
	}
	if _, ok := errMap["message"]; !ok {
		t.Error("error object missing 'message'")
	}
}
