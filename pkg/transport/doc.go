// Package transport defines the handler interfaces and middleware chain for
// the falpipe HTTP/SSE transport layer.
//
// The transport layer bridges external clients and the pipe engine. It
// deserializes incoming chat requests into the wire types defined in
// pkg/api, dispatches them for processing, and serializes the result back
// to the client in either synchronous (JSON) or streaming (SSE) form.
//
// # Handler Interfaces
//
// Two interfaces define the contract between the transport layer and the
// rest of the system:
//
//   - PipeInvoker runs one pipe invocation. It takes a status sink for
//     best-effort progress events and always returns a result; the pipe
//     boundary converts every failure into a displayable string, so there
//     is no error to propagate.
//   - ModelLister advertises the model menu the gateway routes.
//
// # Middleware
//
// The middleware chain wraps PipeInvoker with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. Custom middleware
// can be added for application-specific concerns.
//
// Transport-level errors (malformed JSON, oversized bodies, abuse-limit
// violations) are the only conditions that produce HTTP error statuses.
// Semantic problems with a request, such as an unknown model or a missing
// prompt, flow through the pipe and come back as part of its result.
package transport
