// Package settings holds the operator-editable generation settings and the
// store abstraction that persists them.
//
// A settings document is read-only during request handling: the engine takes
// a value snapshot per invocation, so concurrent requests never observe a
// half-applied update. Mutation happens between requests through Store.Put.
package settings

import (
	"errors"
	"fmt"
)

// Routing modes for model identifiers that resolve to no registered backend.
const (
	// RoutingModeStrict fails the request.
	RoutingModeStrict = "strict"
	// RoutingModeFallback routes to the configured custom target; with no
	// custom target configured it behaves like strict.
	RoutingModeFallback = "fallback"
)

// SupportedAspectRatios lists the accepted aspect_ratio tokens.
var SupportedAspectRatios = []string{"16:9", "1:1", "9:16", "4:3", "3:4"}

// Settings is the operator valve surface controlling how generation
// arguments are built. All fields apply to every backend family except where
// noted; family-specific fields are simply ignored by the others.
type Settings struct {
	// Credential is the fal.ai API key, required before any generation.
	Credential string `json:"credential,omitempty" yaml:"credential"`

	// Width and Height drive pixel-dimension backends.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// AspectRatio drives ratio-token backends and the recraft preset lookup.
	AspectRatio string `json:"aspect_ratio" yaml:"aspect_ratio"`

	// Style selects the recraft rendering style.
	Style string `json:"style" yaml:"style"`

	// RawMode enables the flux ultra raw output mode.
	RawMode bool `json:"raw_mode" yaml:"raw_mode"`

	// NumInferenceSteps sets the hunyuan denoising step count.
	NumInferenceSteps int `json:"num_inference_steps" yaml:"num_inference_steps"`

	// EnableSafetyChecker is passed to every backend family.
	EnableSafetyChecker bool `json:"enable_safety_checker" yaml:"enable_safety_checker"`

	// RoutingMode selects the behavior for unknown model identifiers.
	// Empty means strict.
	RoutingMode string `json:"routing_mode" yaml:"routing_mode"`

	// CustomTarget is the backend target used by fallback routing, for
	// example a fal model path not present in the built-in table.
	CustomTarget string `json:"custom_target,omitempty" yaml:"custom_target"`
}

// Default returns the settings document used before an operator changes
// anything.
func Default() Settings {
	return Settings{
		Width:               800,
		Height:              1422,
		AspectRatio:         "9:16",
		Style:               "realistic_image",
		NumInferenceSteps:   28,
		EnableSafetyChecker: false,
		RoutingMode:         RoutingModeStrict,
	}
}

// Validate checks the document for values no backend family could accept.
// The credential may be empty here; its absence is reported per request at
// generation time instead.
func (s Settings) Validate() error {
	var errs []error

	if s.Width <= 0 {
		errs = append(errs, fmt.Errorf("width: must be positive, got %d", s.Width))
	}
	if s.Height <= 0 {
		errs = append(errs, fmt.Errorf("height: must be positive, got %d", s.Height))
	}
	if !validAspectRatio(s.AspectRatio) {
		errs = append(errs, fmt.Errorf("aspect_ratio: %q is not one of %v", s.AspectRatio, SupportedAspectRatios))
	}
	if s.NumInferenceSteps <= 0 {
		errs = append(errs, fmt.Errorf("num_inference_steps: must be positive, got %d", s.NumInferenceSteps))
	}
	switch s.RoutingMode {
	case "", RoutingModeStrict, RoutingModeFallback:
	default:
		errs = append(errs, fmt.Errorf("routing_mode: %q must be %q or %q", s.RoutingMode, RoutingModeStrict, RoutingModeFallback))
	}

	return errors.Join(errs...)
}

// FallbackTarget returns the custom target when fallback routing is active,
// or empty when misses must fail.
func (s Settings) FallbackTarget() string {
	if s.RoutingMode == RoutingModeFallback {
		return s.CustomTarget
	}
	return ""
}

func validAspectRatio(ratio string) bool {
	for _, r := range SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// Redacted is the settings document as exposed over read surfaces: the
// credential value is replaced by a presence flag.
type Redacted struct {
	CredentialSet       bool   `json:"credential_set"`
	Width               int    `json:"width"`
	Height              int    `json:"height"`
	AspectRatio         string `json:"aspect_ratio"`
	Style               string `json:"style"`
	RawMode             bool   `json:"raw_mode"`
	NumInferenceSteps   int    `json:"num_inference_steps"`
	EnableSafetyChecker bool   `json:"enable_safety_checker"`
	RoutingMode         string `json:"routing_mode"`
	CustomTarget        string `json:"custom_target,omitempty"`
}

// Redacted returns the externally visible view of the document.
func (s Settings) Redacted() Redacted {
	return Redacted{
		CredentialSet:       s.Credential != "",
		Width:               s.Width,
		Height:              s.Height,
		AspectRatio:         s.AspectRatio,
		Style:               s.Style,
		RawMode:             s.RawMode,
		NumInferenceSteps:   s.NumInferenceSteps,
		EnableSafetyChecker: s.EnableSafetyChecker,
		RoutingMode:         s.RoutingMode,
		CustomTarget:        s.CustomTarget,
	}
}
