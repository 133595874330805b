package api

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIErrorInterface(t *testing.T) {
	var _ error = &APIError{}
	var _ error = &PipeError{}
}

func TestAPIErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			"with param",
			&APIError{Type: ErrorTypeInvalidRequest, Param: "model", Message: "is required"},
			"invalid_request: is required (param: model)",
		},
		{
			"without param",
			&APIError{Type: ErrorTypeServerError, Message: "internal failure"},
			"server_error: internal failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("APIError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *APIError
		wantType  ErrorType
		wantParam string
	}{
		{"invalid request", NewInvalidRequestError("model", "is required"), ErrorTypeInvalidRequest, "model"},
		{"not found", NewNotFoundError("no such route"), ErrorTypeNotFound, ""},
		{"server error", NewServerError("internal failure"), ErrorTypeServerError, ""},
		{"model error", NewModelError("backend overloaded"), ErrorTypeModelError, ""},
		{"too many requests", NewTooManyRequestsError("rate limit exceeded"), ErrorTypeTooManyRequests, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", tt.err.Type, tt.wantType)
			}
			if tt.err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", tt.err.Param, tt.wantParam)
			}
		})
	}
}

func TestPipeErrorRender(t *testing.T) {
	tests := []struct {
		name string
		err  *PipeError
		want string
	}{
		{"no messages", NewNoMessagesError(), "Error: No messages found."},
		{"empty prompt", NewEmptyPromptError(), "Error: No prompt found."},
		{"missing credential", NewMissingCredentialError(), "Error: FAL_KEY is not configured."},
		{"missing image url", NewMissingImageURLError(), "Error: Image URL missing."},
		{
			"empty result",
			NewEmptyResultError(`{"images":[]}`),
			`Error: Generation failed. Result: {"images":[]}`,
		},
		{
			"backend error",
			NewBackendError(errors.New("connection refused")),
			"Error: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnsupportedModelError(t *testing.T) {
	err := NewUnsupportedModelError("gpt-4o")
	if err.Code != PipeCodeUnsupportedModel {
		t.Errorf("Code = %q, want %q", err.Code, PipeCodeUnsupportedModel)
	}
	rendered := err.Render()
	if !strings.HasPrefix(rendered, "Error: The selected model (gpt-4o)") {
		t.Errorf("Render() = %q, want selected-model prefix with requested id", rendered)
	}
	if !strings.Contains(rendered, "IMG:") {
		t.Errorf("Render() = %q, want pointer to the IMG: model list", rendered)
	}
}

func TestPipeErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *PipeError
		want PipeCode
	}{
		{"no messages", NewNoMessagesError(), PipeCodeNoMessages},
		{"empty prompt", NewEmptyPromptError(), PipeCodeEmptyPrompt},
		{"missing credential", NewMissingCredentialError(), PipeCodeMissingCredential},
		{"settings unavailable", NewSettingsUnavailableError(errors.New("db down")), PipeCodeSettingsUnavailable},
		{"backend", NewBackendError(errors.New("boom")), PipeCodeBackendError},
		{"empty result", NewEmptyResultError("{}"), PipeCodeEmptyResult},
		{"missing image url", NewMissingImageURLError(), PipeCodeMissingImageURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"pipe error", NewEmptyPromptError(), "Error: No prompt found."},
		{
			"wrapped pipe error",
			fmt.Errorf("handling request: %w", NewNoMessagesError()),
			"Error: No messages found.",
		},
		{"plain error", errors.New("socket closed"), "Error: socket closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderError(tt.err); got != tt.want {
				t.Errorf("RenderError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipeCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("pipe: %w", NewMissingCredentialError())
	if got := PipeCodeOf(wrapped); got != PipeCodeMissingCredential {
		t.Errorf("PipeCodeOf(wrapped) = %q, want %q", got, PipeCodeMissingCredential)
	}
	if got := PipeCodeOf(errors.New("boom")); got != PipeCodeBackendError {
		t.Errorf("PipeCodeOf(plain) = %q, want %q", got, PipeCodeBackendError)
	}
}
