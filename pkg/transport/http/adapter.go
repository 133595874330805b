package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/observability"
	"github.com/bmertz/falpipe/pkg/settings"
	"github.com/bmertz/falpipe/pkg/transport"
)

// Adapter serves the pipe API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
// Pipe outcomes are always HTTP 200; error statuses are reserved for
// transport-level failures (malformed bodies, limits, settings rejection).
type Adapter struct {
	invoker  transport.PipeInvoker
	models   transport.ModelLister
	settings settings.Store
	inflight *transport.InFlightRegistry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout int // seconds
	Validation      api.ValidationConfig
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     10 << 20, // 10 MB
		ShutdownTimeout: 30,
		Validation:      api.DefaultValidationConfig(),
	}
}

// NewAdapter creates an HTTP adapter with the given PipeInvoker and options.
// The ModelLister backs the model menu endpoint and the settings.Store backs
// the settings read/replace endpoints. Middleware is applied to the
// PipeInvoker in the given order.
func NewAdapter(invoker transport.PipeInvoker, models transport.ModelLister, store settings.Store, cfg Config, middlewares ...transport.Middleware) *Adapter {
	// Apply middleware chain to the invoker.
	if len(middlewares) > 0 {
		invoker = transport.Chain(middlewares...)(invoker)
	}

	a := &Adapter{
		invoker:  invoker,
		models:   models,
		settings: store,
		inflight: transport.NewInFlightRegistry(),
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/pipe", a.handlePipe)
	a.mux.HandleFunc("GET /v1/models", a.handleListModels)
	a.mux.HandleFunc("GET /v1/settings", a.handleGetSettings)
	a.mux.HandleFunc("PUT /v1/settings", a.handlePutSettings)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// InFlight exposes the in-flight registry so health reporting can include
// the number of running generations.
func (a *Adapter) InFlight() *transport.InFlightRegistry {
	return a.inflight
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded to
// the response. After the handler runs, it checks the context for a
// request ID (set by the transport-level RequestID middleware) and adds
// it to the response headers if not already set.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If client sent X-Request-ID, propagate it into context.
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		// Use a response writer wrapper to capture and set the request ID
		// header before the first write.
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}

// handlePipe handles POST /v1/pipe.
func (a *Adapter) handlePipe(w http.ResponseWriter, r *http.Request) {
	// Validate Content-Type.
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	// Decode request.
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	if apiErr := api.ValidateRequest(&req, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	id := api.NewPipeID()
	a.inflight.Add(id)
	defer a.inflight.Remove(id)

	if req.Stream {
		a.handleStreamingPipe(w, r, id, &req)
		return
	}

	// Non-streaming: run the pipe without a sink and return the envelope.
	result := a.invoker.Pipe(r.Context(), &req, nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pipeResponse(id, req.Model, result))
}

// handleStreamingPipe handles streaming POST requests (stream: true).
// Status events become SSE frames as they arrive; the terminal result frame
// always follows, even when no status events were emitted.
func (a *Adapter) handleStreamingPipe(w http.ResponseWriter, r *http.Request, id string, req *api.ChatRequest) {
	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	sw := newStatusStreamWriter(w)
	sink := func(ev api.StatusEvent) {
		if err := sw.WriteStatus(r.Context(), ev); err != nil {
			observability.StatusEventsDroppedTotal.Inc()
		}
	}

	result := a.invoker.Pipe(r.Context(), req, sink)

	// A failed result write means the client is gone; the generation
	// outcome is already accounted for, so there is nothing left to do.
	_ = sw.WriteResult(r.Context(), pipeResponse(id, req.Model, result))
}

// pipeResponse builds the response envelope around a pipe result.
func pipeResponse(id, model string, result *api.PipeResult) *api.PipeResponse {
	return &api.PipeResponse{
		ID:        id,
		Object:    api.ObjectPipeResponse,
		CreatedAt: time.Now().Unix(),
		Model:     model,
		Content:   result.Content,
		Status:    result.Status,
	}
}

// handleListModels handles GET /v1/models.
func (a *Adapter) handleListModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.NewModelList(a.models.List()))
}

// handleGetSettings handles GET /v1/settings. The credential never leaves
// the server; the response carries a presence flag in its place.
func (a *Adapter) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := a.settings.Get(r.Context())
	if err != nil {
		transport.WriteAPIError(w, api.NewServerError("loading settings failed: "+err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc.Redacted())
}

// handlePutSettings handles PUT /v1/settings. The document is replaced as a
// whole; fields absent from the body take their zero values and must pass
// validation like any other.
func (a *Adapter) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var doc settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	if err := doc.Validate(); err != nil {
		observability.SettingsUpdatesTotal.WithLabelValues("rejected").Inc()
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("settings", err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	if err := a.settings.Put(r.Context(), doc); err != nil {
		observability.SettingsUpdatesTotal.WithLabelValues("rejected").Inc()
		transport.WriteAPIError(w, api.NewServerError("storing settings failed: "+err.Error()))
		return
	}

	observability.SettingsUpdatesTotal.WithLabelValues("accepted").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc.Redacted())
}
