// Package apikey provides an API key authenticator that validates
// bearer tokens against the keys listed in the gateway configuration,
// using SHA-256 hashing and constant-time comparison.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/bmertz/falpipe/pkg/auth"
)

// KeyEntry maps a key hash to an identity.
type KeyEntry struct {
	KeyHash  [32]byte
	Identity auth.Identity
}

// Authenticator validates bearer tokens against a static key store.
type Authenticator struct {
	keys []KeyEntry
}

// RawKeyEntry is the configuration format for API keys. Tier and scopes
// flow into the resulting identity: a key with scopes is restricted to
// them, a key without scopes has full access.
type RawKeyEntry struct {
	Key      string
	Identity auth.Identity
}

// New creates an API key authenticator from a list of raw keys and identities.
// Keys are hashed immediately; plaintext keys are not stored.
func New(entries []RawKeyEntry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		a.keys = append(a.keys, KeyEntry{
			KeyHash:  sha256.Sum256([]byte(e.Key)),
			Identity: e.Identity,
		})
	}
	return a
}

// Authenticate extracts the bearer token and validates it.
// Returns Yes if valid, No if bearer token present but invalid,
// Abstain if no Authorization header or not a Bearer token.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	// Must be Bearer token.
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Result{Decision: auth.Abstain}
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	// Hash the token and compare against stored hashes. The scan always
	// visits every entry so lookup time does not depend on which key matched.
	tokenHash := sha256.Sum256([]byte(token))

	var matched *auth.Identity
	for i := range a.keys {
		if subtle.ConstantTimeCompare(tokenHash[:], a.keys[i].KeyHash[:]) == 1 {
			id := a.keys[i].Identity
			matched = &id
		}
	}
	if matched != nil {
		return auth.Result{Decision: auth.Yes, Identity: matched}
	}

	// Bearer token present but not found.
	return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
