package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/bmertz/falpipe/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// pipe invocation. The log entry includes the request ID (from context),
// the requested model, whether the client streams, the duration, and the
// terminal status of the result.
//
// The result content itself is never logged: success content is a URL the
// backend already knows, and failure content can embed backend payloads.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next PipeInvoker) PipeInvoker {
		return PipeInvokerFunc(func(ctx context.Context, req *api.ChatRequest, sink api.StatusSink) *api.PipeResult {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			result := next.Pipe(ctx, req, sink)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("model", req.Model),
				slog.Bool("stream", req.Stream),
				slog.Duration("duration", time.Since(start)),
				slog.String("status", string(result.Status)),
			}

			if result.Status == api.PipeStatusFailed {
				logger.LogAttrs(ctx, slog.LevelWarn, "pipe failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "pipe completed", attrs...)
			}

			return result
		})
	}
}
