package transport

import (
	"context"

	"github.com/bmertz/falpipe/pkg/api"
)

// PipeInvoker runs one pipe invocation. It is the primary handler contract.
// The implementation receives a chat request and a status sink, and returns
// the terminal result. There is no error return: the pipe boundary recovers
// every failure and renders it as a displayable result string, so callers
// always get something to show.
//
// The sink may be nil when the caller has no use for progress events.
type PipeInvoker interface {
	Pipe(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) *api.PipeResult
}

// PipeInvokerFunc is an adapter that allows using an ordinary function
// as a PipeInvoker.
type PipeInvokerFunc func(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) *api.PipeResult

// Pipe calls f(ctx, req, sink).
func (f PipeInvokerFunc) Pipe(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) *api.PipeResult {
	return f(ctx, req, sink)
}

// ModelLister advertises the model menu the gateway routes. The list is
// static per process and independent of any request state.
type ModelLister interface {
	List() []api.ModelInfo
}
