package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/debug"
	"github.com/bmertz/falpipe/pkg/observability"
	"github.com/bmertz/falpipe/pkg/provider"
	"github.com/bmertz/falpipe/pkg/registry"
	"github.com/bmertz/falpipe/pkg/settings"
	"github.com/bmertz/falpipe/pkg/transport"
)

// Engine orchestrates pipe invocations between the transport layer and the
// image generation backend. It implements transport.PipeInvoker.
//
// The engine itself carries no tunable state: everything an operator can
// change lives in the settings document, read as a snapshot per invocation.
type Engine struct {
	registry *registry.Registry
	provider provider.Provider
	settings settings.Store
}

// Ensure Engine implements transport.PipeInvoker at compile time.
var _ transport.PipeInvoker = (*Engine)(nil)

// New creates a new Engine. All three collaborators are required.
func New(reg *registry.Registry, p provider.Provider, store settings.Store) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("engine: registry must not be nil")
	}
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("engine: settings store must not be nil")
	}
	return &Engine{
		registry: reg,
		provider: p,
		settings: store,
	}, nil
}

// Pipe runs one invocation end to end: resolve the model, extract the
// prompt, build the arguments, dispatch the generation, and translate the
// outcome. The returned result is always displayable; failures render as
// "Error: ..." strings rather than error values.
//
// Failures before dispatch emit no status events. Once the generation is
// handed to the backend, exactly one terminal done=true event follows.
func (e *Engine) Pipe(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) *api.PipeResult {
	snap, err := e.settings.Get(ctx)
	if err != nil {
		return e.fail(req.Model, api.NewSettingsUnavailableError(err))
	}

	target, perr := e.resolveTarget(req.Model, snap)
	if perr != nil {
		return e.fail(req.Model, perr)
	}

	if len(req.Messages) == 0 {
		return e.fail(req.Model, api.NewNoMessagesError())
	}

	prompt, ok := ExtractPrompt(req.Messages)
	if !ok {
		return e.fail(req.Model, api.NewEmptyPromptError())
	}
	debug.Log("engine", "resolved", "model", req.Model, "target", target, "prompt", debug.Truncate(prompt, 120))

	if snap.Credential == "" {
		return e.fail(req.Model, api.NewMissingCredentialError())
	}

	genReq := &provider.GenerationRequest{
		Target:     target,
		Arguments:  provider.BuildArguments(target, prompt, snap),
		Credential: snap.Credential,
	}

	genID := api.NewGenerationID()
	debug.Log("engine", "dispatching", "generation", genID, "target", target)
	emit(sink, api.NewSubmittingStatus(target))

	startTime := time.Now()
	result, err := e.dispatch(ctx, genReq)
	duration := time.Since(startTime)
	provName := e.provider.Name()

	if err != nil {
		observability.BackendRequestsTotal.WithLabelValues(provName, target, "error").Inc()
		observability.BackendLatency.WithLabelValues(provName, target).Observe(duration.Seconds())
		return e.failDispatched(req.Model, sink, api.NewBackendError(err))
	}

	observability.BackendRequestsTotal.WithLabelValues(provName, target, "success").Inc()
	observability.BackendLatency.WithLabelValues(provName, target).Observe(duration.Seconds())

	if len(result.Images) == 0 {
		return e.failDispatched(req.Model, sink, api.NewEmptyResultError(result.RawString()))
	}
	url := result.Images[0].URL
	if url == "" {
		return e.failDispatched(req.Model, sink, api.NewMissingImageURLError())
	}

	observability.ImagesGeneratedTotal.WithLabelValues(provName, target).Inc()
	observability.PipeInvocationsTotal.WithLabelValues(req.Model, "success").Inc()
	debug.Log("engine", "generation complete", "generation", genID, "target", target, "duration", duration, "images", len(result.Images))

	emit(sink, api.NewSucceededStatus())
	return &api.PipeResult{
		Content: fmt.Sprintf("![Generated Image](%s)", url),
		Status:  api.PipeStatusCompleted,
	}
}

// resolveTarget maps the requested model to a backend target. Registry
// misses consult the snapshot's routing policy: fallback mode routes to
// the operator's custom target when one is configured, strict mode (and
// fallback without a target) rejects the model.
func (e *Engine) resolveTarget(requested string, snap settings.Settings) (string, *api.PipeError) {
	target, err := e.registry.Resolve(requested)
	if err == nil {
		return target, nil
	}
	if fallback := snap.FallbackTarget(); fallback != "" {
		observability.RoutingFallbackTotal.Inc()
		return fallback, nil
	}
	return "", api.NewUnsupportedModelError(requested)
}

// dispatch runs the backend call on its own goroutine with a
// cancellation-detached context and waits for the terminal outcome. Once
// submitted, a generation is never abandoned: the inbound request's
// cancellation does not reach the backend call.
func (e *Engine) dispatch(ctx context.Context, genReq *provider.GenerationRequest) (*provider.GenerationResult, error) {
	type outcome struct {
		result *provider.GenerationResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := e.provider.Generate(context.WithoutCancel(ctx), genReq)
		done <- outcome{result: result, err: err}
	}()

	out := <-done
	return out.result, out.err
}

// fail renders a pre-dispatch failure. No status event is emitted: the
// backend was never engaged, so there is no generation to report on.
func (e *Engine) fail(model string, pe *api.PipeError) *api.PipeResult {
	observability.PipeInvocationsTotal.WithLabelValues(model, string(pe.Code)).Inc()
	return &api.PipeResult{Content: pe.Render(), Status: api.PipeStatusFailed}
}

// failDispatched renders a post-dispatch failure and emits the terminal
// status event for the generation that was started.
func (e *Engine) failDispatched(model string, sink api.StatusSink, pe *api.PipeError) *api.PipeResult {
	observability.PipeInvocationsTotal.WithLabelValues(model, string(pe.Code)).Inc()
	emit(sink, api.NewFailedStatus(failedStatusText(pe)))
	return &api.PipeResult{Content: pe.Render(), Status: api.PipeStatusFailed}
}
