package provider

import "strings"

// Family identifies the argument dialect of a backend target. Argument
// construction dispatches on this closed set once per request instead of
// re-testing target substrings at every field decision.
type Family int

const (
	// FamilyGeneric covers targets with no specific dialect, including
	// operator-configured custom targets.
	FamilyGeneric Family = iota
	FamilyRecraft
	FamilyFluxUltra
	FamilyImagen
	FamilyHunyuan
	FamilyFlux2
	FamilySeedream
	FamilyZImage
)

// String returns the family label used in logs and metrics.
func (f Family) String() string {
	switch f {
	case FamilyRecraft:
		return "recraft"
	case FamilyFluxUltra:
		return "flux-ultra"
	case FamilyImagen:
		return "imagen"
	case FamilyHunyuan:
		return "hunyuan"
	case FamilyFlux2:
		return "flux-2"
	case FamilySeedream:
		return "seedream"
	case FamilyZImage:
		return "z-image"
	default:
		return "generic"
	}
}

// Classify determines the argument family of a backend target. Rule order
// matters: "ultra" is tested before "flux-2" so flux-pro ultra targets never
// fall through to the flat-dimension flux dialect.
func Classify(target string) Family {
	switch {
	case strings.Contains(target, "recraft"):
		return FamilyRecraft
	case strings.Contains(target, "ultra"):
		return FamilyFluxUltra
	case strings.Contains(target, "imagen4"):
		return FamilyImagen
	case strings.Contains(target, "hunyuan"):
		return FamilyHunyuan
	case strings.Contains(target, "flux-2"):
		return FamilyFlux2
	case strings.Contains(target, "seedream"):
		return FamilySeedream
	case strings.Contains(target, "z-image"):
		return FamilyZImage
	default:
		return FamilyGeneric
	}
}
