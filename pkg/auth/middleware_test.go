package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_BypassEndpoint(t *testing.T) {
	chain := &Chain{DefaultDecision: No}
	mw := Middleware(chain, nil, []string{"/healthz"})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("bypass endpoint: status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_NoAuth_Rejects(t *testing.T) {
	chain := &Chain{DefaultDecision: No}
	mw := Middleware(chain, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/v1/pipe", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no auth: status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_ValidAuth_Passes(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{
				Decision: Yes,
				Identity: &Identity{Subject: "alice", ServiceTier: "pro"},
			}},
		},
		DefaultDecision: No,
	}
	mw := Middleware(chain, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil || id.Subject != "alice" {
			t.Error("expected identity 'alice' in context")
		}
		if id != nil && id.ServiceTier != "pro" {
			t.Errorf("tier = %q, want %q", id.ServiceTier, "pro")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/v1/pipe", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("valid auth: status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_EmptySubject_Rejects(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Yes, Identity: &Identity{}}},
		},
	}
	mw := Middleware(chain, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/v1/pipe", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("empty subject: status = %d, want 500", rec.Code)
	}
}

func TestMiddleware_RateLimit_Exceeded(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{
				Decision: Yes,
				Identity: &Identity{Subject: "alice", ServiceTier: "limited"},
			}},
		},
		DefaultDecision: No,
	}

	limiter := NewInProcessLimiter(map[string]TierConfig{
		"limited": {RequestsPerMinute: 2},
	}, 100)

	mw := Middleware(chain, limiter, DefaultBypassEndpoints)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First 2 requests should pass.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/v1/pipe", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	// 3rd should be rate limited.
	req := httptest.NewRequest("POST", "/v1/pipe", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("rate limited request: status = %d, want 429", rec.Code)
	}
}

func TestMiddleware_NoLimiter_AllAllowed(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}},
		},
	}

	// nil limiter = no limiting.
	mw := Middleware(chain, nil, DefaultBypassEndpoints)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("POST", "/v1/pipe", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i+1, rec.Code)
			break
		}
	}
}

func TestRequireScope_ScopedIdentityWithoutScope(t *testing.T) {
	handler := requireScopeHandler(t, &Identity{Subject: "alice", Scopes: []string{"generate"}})

	req := httptest.NewRequest("PUT", "/v1/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("missing scope: status = %d, want 403", rec.Code)
	}
}

func TestRequireScope_ScopedIdentityWithScope(t *testing.T) {
	handler := requireScopeHandler(t, &Identity{Subject: "alice", Scopes: []string{"generate", "settings:write"}})

	req := httptest.NewRequest("PUT", "/v1/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("granted scope: status = %d, want 200", rec.Code)
	}
}

func TestRequireScope_UnscopedIdentityPasses(t *testing.T) {
	handler := requireScopeHandler(t, &Identity{Subject: "anonymous"})

	req := httptest.NewRequest("PUT", "/v1/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("unscoped identity: status = %d, want 200", rec.Code)
	}
}

// requireScopeHandler builds a settings:write-gated handler behind an
// authenticating middleware that always yields the given identity.
func requireScopeHandler(t *testing.T, id *Identity) http.Handler {
	t.Helper()
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Yes, Identity: id}},
		},
	}
	mw := Middleware(chain, nil, nil)
	scoped := RequireScope("settings:write")
	return mw(scoped(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
}
