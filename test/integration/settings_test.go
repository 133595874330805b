package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/settings"
)

func TestGetSettingsRedactsCredential(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/v1/settings")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var raw map[string]any
	decodeJSON(t, resp, &raw)

	if _, leaked := raw["credential"]; leaked {
		t.Error("settings response carries the raw credential")
	}
	if set, _ := raw["credential_set"].(bool); !set {
		t.Error("credential_set = false, want true for the seeded store")
	}
	if w, _ := raw["width"].(float64); w != 800 {
		t.Errorf("width = %v, want 800", raw["width"])
	}
	if ar, _ := raw["aspect_ratio"].(string); ar != "9:16" {
		t.Errorf("aspect_ratio = %q, want 9:16", ar)
	}
}

func TestPutSettingsRoundTrip(t *testing.T) {
	t.Cleanup(func() { resetSettings(t) })

	doc := initialTestSettings()
	doc.Width = 1024
	doc.Height = 1024
	doc.AspectRatio = "1:1"
	doc.Style = "digital_illustration"

	resp := putJSON(t, testEnv.BaseURL()+"/v1/settings", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var updated settings.Redacted
	decodeJSON(t, resp, &updated)
	if !updated.CredentialSet {
		t.Error("PUT response lost the credential presence flag")
	}
	if updated.Width != 1024 || updated.AspectRatio != "1:1" {
		t.Errorf("PUT response = %+v, want the stored values echoed", updated)
	}

	// A later read must see the replaced document.
	resp = getURL(t, testEnv.BaseURL()+"/v1/settings")
	var fetched settings.Redacted
	decodeJSON(t, resp, &fetched)
	if fetched.Width != 1024 || fetched.Height != 1024 {
		t.Errorf("GET after PUT = %dx%d, want 1024x1024", fetched.Width, fetched.Height)
	}
	if fetched.Style != "digital_illustration" {
		t.Errorf("style = %q, want digital_illustration", fetched.Style)
	}
}

func TestPutSettingsValidation(t *testing.T) {
	doc := initialTestSettings()
	doc.Width = -5
	doc.AspectRatio = "2:1"

	resp := putJSON(t, testEnv.BaseURL()+"/v1/settings", doc)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error.type = %q, want invalid_request", errResp.Error.Type)
	}
	if !strings.Contains(errResp.Error.Message, "width") {
		t.Errorf("error message %q does not name the width violation", errResp.Error.Message)
	}
	if !strings.Contains(errResp.Error.Message, "aspect_ratio") {
		t.Errorf("error message %q does not name the aspect_ratio violation", errResp.Error.Message)
	}

	// The rejected document must not have been applied.
	resp = getURL(t, testEnv.BaseURL()+"/v1/settings")
	var fetched settings.Redacted
	decodeJSON(t, resp, &fetched)
	if fetched.Width == -5 {
		t.Error("rejected settings were stored anyway")
	}
}

// TestPutSettingsReplacesWholeDocument pins the replace semantics: fields
// absent from the body become zero values and fail validation rather than
// inheriting the stored document.
func TestPutSettingsReplacesWholeDocument(t *testing.T) {
	partial := map[string]any{
		"credential":   testFalKey,
		"width":        800,
		"height":       1422,
		"aspect_ratio": "9:16",
		"routing_mode": "strict",
		// num_inference_steps omitted
	}

	resp := putJSON(t, testEnv.BaseURL()+"/v1/settings", partial)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for the zeroed field, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || !strings.Contains(errResp.Error.Message, "num_inference_steps") {
		t.Errorf("unexpected error payload: %+v", errResp.Error)
	}
}

func TestPutSettingsAffectsGeneration(t *testing.T) {
	t.Cleanup(func() { resetSettings(t) })

	doc := initialTestSettings()
	doc.Width = 640
	doc.Height = 480
	doc.AspectRatio = "4:3"

	resp := putJSON(t, testEnv.BaseURL()+"/v1/settings", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	resp = postJSON(t, testEnv.BaseURL()+"/v1/pipe", pipeRequest("falai-z-image", "a resized scene", false))
	readBody(t, resp)

	sub := testEnv.Queue.LastSubmission(t)
	size, ok := sub.Args["image_size"].(map[string]any)
	if !ok {
		t.Fatalf("image_size = %T, want object", sub.Args["image_size"])
	}
	if size["width"] != float64(640) || size["height"] != float64(480) {
		t.Errorf("image_size = %v, want 640x480 from the updated settings", size)
	}
}
