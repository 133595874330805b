package provider

import "encoding/json"

// GenerationRequest is the backend-facing request: the resolved target, the
// prepared argument payload, and the credential to authenticate with.
//
// The credential travels with the request rather than living in provider or
// process state, so concurrent invocations with different credentials cannot
// interfere.
type GenerationRequest struct {
	Target     string
	Arguments  Arguments
	Credential string
}

// Image is one generated image reference as reported by the backend.
type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// GenerationResult is the backend's terminal result for one generation.
type GenerationResult struct {
	Images []Image

	// Raw preserves the backend's result payload verbatim for diagnostics,
	// in particular for reporting results that carry no images.
	Raw json.RawMessage
}

// FirstURL returns the URL of the first image, or empty when the result
// carries no images or the first image has no URL.
func (r *GenerationResult) FirstURL() string {
	if r == nil || len(r.Images) == 0 {
		return ""
	}
	return r.Images[0].URL
}

// RawString renders the raw result payload for diagnostics. A result
// without a payload renders as an empty JSON object.
func (r *GenerationResult) RawString() string {
	if r == nil || len(r.Raw) == 0 {
		return "{}"
	}
	return string(r.Raw)
}
