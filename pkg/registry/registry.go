// Package registry maps advertised model identifiers to fal.ai backend
// targets.
//
// The registry is a static, ordered table fixed at construction. Matching is
// substring containment: a registered identifier matches when it appears
// anywhere inside the requested identifier, so host-prefixed or suffixed
// forms ("open-webui.falai-z-image", "falai-z-image:latest") still resolve.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmertz/falpipe/pkg/api"
)

// ErrNotFound is returned by Resolve when no registered identifier is
// contained in the requested one.
var ErrNotFound = errors.New("model not found")

// Entry binds one advertised model identifier to a backend target.
type Entry struct {
	ID     string
	Name   string
	Target string
}

// Registry is an immutable, ordered set of entries. The zero value resolves
// nothing; use New or Default.
type Registry struct {
	entries []Entry
}

// New creates a registry from the given entries, preserving order. Entries
// must carry non-empty identifiers and targets: an empty identifier would be
// contained in every requested model and capture all traffic.
func New(entries ...Entry) (*Registry, error) {
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: empty model identifier", i)
		}
		if e.Target == "" {
			return nil, fmt.Errorf("entry %d (%s): empty backend target", i, e.ID)
		}
	}
	r := &Registry{entries: make([]Entry, len(entries))}
	copy(r.entries, entries)
	return r, nil
}

// Default returns the built-in model table.
func Default() *Registry {
	return &Registry{entries: []Entry{
		{ID: "falai-flux-2-pro", Name: "IMG: Flux 2 Pro", Target: "fal-ai/flux-2-pro"},
		{ID: "falai-flux-ultra", Name: "IMG: Flux 1.1 Ultra", Target: "fal-ai/flux-pro/v1.1-ultra"},
		{ID: "falai-recraft-v3", Name: "IMG: Recraft v3", Target: "fal-ai/recraft/v3/text-to-image"},
		{ID: "falai-seedream", Name: "IMG: SeaDream", Target: "fal-ai/bytedance/seedream/v4.5/text-to-image"},
		{ID: "falai-hunyuan", Name: "IMG: Hunyuan", Target: "fal-ai/hunyuan-image/v3/text-to-image"},
		{ID: "falai-imagen4", Name: "IMG: Imagen 4", Target: "fal-ai/imagen4/preview/fast"},
		{ID: "falai-z-image", Name: "IMG: Z-Image Turbo", Target: "fal-ai/z-image/turbo"},
	}}
}

// Resolve finds the backend target for a requested model identifier. The
// first entry in registration order whose identifier is contained in the
// requested string wins. A miss returns ErrNotFound; routing policy for
// misses belongs to the caller.
func (r *Registry) Resolve(requested string) (string, error) {
	for _, e := range r.entries {
		if strings.Contains(requested, e.ID) {
			return e.Target, nil
		}
	}
	return "", ErrNotFound
}

// List returns the advertised model menu in registration order. The result
// is a fresh slice on every call and is independent of any request state.
func (r *Registry) List() []api.ModelInfo {
	models := make([]api.ModelInfo, 0, len(r.entries))
	for _, e := range r.entries {
		models = append(models, api.ModelInfo{ID: e.ID, Name: e.Name})
	}
	return models
}
