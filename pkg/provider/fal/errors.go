package fal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bmertz/falpipe/pkg/api"
)

// mapHTTPError converts a queue response with a non-2xx status code into
// an APIError. It attempts to parse the body for a descriptive message.
func mapHTTPError(resp *http.Response) *api.APIError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if message == "" {
			message = "backend rejected the generation arguments"
		}
		return api.NewInvalidRequestError("", message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend authentication failed"
		}
		return api.NewServerError(message)

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "backend target not found"
		}
		return api.NewNotFoundError(message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewTooManyRequestsError(message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewServerError(message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewServerError(message)
	}
}

// mapNetworkError converts a network-level error (connection refused,
// timeout, DNS resolution failure) into an APIError.
func mapNetworkError(err error) *api.APIError {
	return api.NewServerError(fmt.Sprintf("backend connection error: %s", err.Error()))
}

// extractErrorMessage pulls a human-readable message out of a queue error
// body. The queue reports errors as {"detail": "..."} or, for argument
// validation failures, {"detail": [{"msg": "..."}]}.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var message string
	if err := json.Unmarshal(payload.Detail, &message); err == nil {
		return message
	}

	var details []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &details); err == nil && len(details) > 0 {
		return details[0].Msg
	}

	return ""
}
