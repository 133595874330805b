package provider

import "github.com/bmertz/falpipe/pkg/settings"

// Arguments is the backend argument payload submitted with a generation.
// Keys and value shapes follow the backend family's argument dialect.
type Arguments map[string]any

// Dimensions is the nested pixel form of the image_size argument.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ratioPresets maps aspect ratio tokens to the named size presets the
// recraft family expects in place of raw ratios.
var ratioPresets = map[string]string{
	"1:1":  "square_hd",
	"16:9": "landscape_16_9",
	"9:16": "portrait_16_9",
	"4:3":  "landscape_4_3",
	"3:4":  "portrait_4_3",
}

// defaultRatioPreset is used for ratio tokens outside the preset table.
const defaultRatioPreset = "square_hd"

// RatioPreset returns the named size preset for an aspect ratio token.
// Unknown tokens fall back to the square preset instead of failing; the
// backend validates its own inputs.
func RatioPreset(ratio string) string {
	if preset, ok := ratioPresets[ratio]; ok {
		return preset
	}
	return defaultRatioPreset
}

// BuildArguments constructs the argument payload for one generation. It is
// a pure function: equal inputs produce an equal payload, and it performs
// no I/O.
//
// Every payload carries the prompt and the safety checker flag. Exactly one
// dimension style is present, selected by the family, and family-specific
// fields (style, raw, num_inference_steps, output_format) never leak into
// other families.
func BuildArguments(target, prompt string, s settings.Settings) Arguments {
	args := Arguments{
		"prompt":                prompt,
		"enable_safety_checker": s.EnableSafetyChecker,
	}

	switch Classify(target) {
	case FamilyRecraft:
		args["image_size"] = RatioPreset(s.AspectRatio)
		args["style"] = s.Style
	case FamilyFluxUltra:
		args["aspect_ratio"] = s.AspectRatio
		args["raw"] = s.RawMode
		args["output_format"] = "jpeg"
	case FamilyImagen:
		args["aspect_ratio"] = s.AspectRatio
	case FamilyHunyuan:
		args["image_size"] = Dimensions{Width: s.Width, Height: s.Height}
		args["num_inference_steps"] = s.NumInferenceSteps
	case FamilyFlux2:
		// The flux-2 dialect takes dimensions flat, not nested.
		args["width"] = s.Width
		args["height"] = s.Height
		args["output_format"] = "jpeg"
	default:
		// Seedream, z-image, and unmatched targets share the nested
		// pixel-dimension dialect.
		args["image_size"] = Dimensions{Width: s.Width, Height: s.Height}
	}

	return args
}
