// Package api defines the wire-level types of the falpipe gateway.
//
// This package provides the data types exchanged with clients: chat-style
// requests with role-tagged messages, the string-or-parts content union,
// pipe results and status events, error types, and ID generation.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. Message content follows the OpenAI chat wire format so
// that Open WebUI style callers can talk to the gateway unchanged.
//
// Core types:
//   - [ChatRequest]: Client request carrying the selected model and conversation
//   - [Message]: Role-tagged conversation entry with string or part-list content
//   - [PipeResult]: Terminal outcome of an invocation, always a displayable string
//   - [StatusEvent]: Progress report emitted while a generation runs
//   - [APIError]: Structured transport error with type, code, param, and message
//   - [PipeError]: Categorized pipe failure rendered into "Error: ..." strings
package api
