package transport

import (
	"context"
	"fmt"

	"github.com/bmertz/falpipe/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to failed pipe results, preserving the invariant that an
// invocation always produces a displayable string. The server continues
// to accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next PipeInvoker) PipeInvoker {
		return PipeInvokerFunc(func(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) (result *api.PipeResult) {
			defer func() {
				if r := recover(); r != nil {
					result = &api.PipeResult{
						Content: fmt.Sprintf("Error: internal error: %v", r),
						Status:  api.PipeStatusFailed,
					}
				}
			}()
			return next.Pipe(ctx, req, sink)
		})
	}
}
