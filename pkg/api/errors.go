package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeModelError      ErrorType = "model_error"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
)

// APIError represents a structured API error with type, code, param, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

// NewModelError creates an APIError for backend model errors.
func NewModelError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeModelError,
		Message: message,
	}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Message: message,
	}
}

// ---------------------------------------------------------------------------
// Pipe failure taxonomy
// ---------------------------------------------------------------------------

// PipeCode identifies the failure class of a pipe invocation.
type PipeCode string

const (
	// Pre-dispatch failures. No status event is emitted for these and the
	// backend is never called.
	PipeCodeUnsupportedModel    PipeCode = "unsupported_model"
	PipeCodeNoMessages          PipeCode = "no_messages"
	PipeCodeEmptyPrompt         PipeCode = "empty_prompt"
	PipeCodeMissingCredential   PipeCode = "missing_credential"
	PipeCodeSettingsUnavailable PipeCode = "settings_unavailable"

	// Post-dispatch failures. Each produces exactly one terminal status event.
	PipeCodeBackendError    PipeCode = "backend_error"
	PipeCodeEmptyResult     PipeCode = "empty_result"
	PipeCodeMissingImageURL PipeCode = "missing_image_url"
)

// PipeError is a categorized pipe failure. Message is display-ready prose
// without the leading prefix; Render adds it.
type PipeError struct {
	Code    PipeCode
	Message string
}

// Error implements the error interface.
func (e *PipeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Render produces the displayable string the pipe boundary returns for
// this failure.
func (e *PipeError) Render() string {
	return "Error: " + e.Message
}

// NewUnsupportedModelError creates a PipeError for a model identifier that
// resolves to no registered backend target.
func NewUnsupportedModelError(requested string) *PipeError {
	return &PipeError{
		Code: PipeCodeUnsupportedModel,
		Message: fmt.Sprintf("The selected model (%s) is not supported. "+
			"Select one of the IMG: models from the model list.", requested),
	}
}

// NewNoMessagesError creates a PipeError for a request without messages.
func NewNoMessagesError() *PipeError {
	return &PipeError{Code: PipeCodeNoMessages, Message: "No messages found."}
}

// NewEmptyPromptError creates a PipeError for a conversation that yields no
// usable prompt text.
func NewEmptyPromptError() *PipeError {
	return &PipeError{Code: PipeCodeEmptyPrompt, Message: "No prompt found."}
}

// NewMissingCredentialError creates a PipeError for a missing backend credential.
func NewMissingCredentialError() *PipeError {
	return &PipeError{Code: PipeCodeMissingCredential, Message: "FAL_KEY is not configured."}
}

// NewSettingsUnavailableError creates a PipeError for a settings store that
// cannot be read.
func NewSettingsUnavailableError(err error) *PipeError {
	return &PipeError{
		Code:    PipeCodeSettingsUnavailable,
		Message: fmt.Sprintf("Loading settings failed: %v.", err),
	}
}

// NewBackendError wraps a backend call failure.
func NewBackendError(err error) *PipeError {
	return &PipeError{Code: PipeCodeBackendError, Message: err.Error()}
}

// NewEmptyResultError creates a PipeError for a backend result without images.
// The raw result is included for diagnosis, matching what the backend returned.
func NewEmptyResultError(raw string) *PipeError {
	return &PipeError{
		Code:    PipeCodeEmptyResult,
		Message: fmt.Sprintf("Generation failed. Result: %s", raw),
	}
}

// NewMissingImageURLError creates a PipeError for a result whose first image
// carries no URL.
func NewMissingImageURLError() *PipeError {
	return &PipeError{Code: PipeCodeMissingImageURL, Message: "Image URL missing."}
}

// RenderError converts any error into the displayable pipe string. PipeError
// values render their own message; everything else is prefixed as-is.
func RenderError(err error) string {
	var pe *PipeError
	if errors.As(err, &pe) {
		return pe.Render()
	}
	return "Error: " + err.Error()
}

// PipeCodeOf extracts the failure class from an error, or backend_error if
// the error is not a PipeError.
func PipeCodeOf(err error) PipeCode {
	var pe *PipeError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return PipeCodeBackendError
}
