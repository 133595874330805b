// Package auth provides pluggable authentication and authorization for falpipe.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from pipe
// logic. The middleware injects the caller identity into the request context
// and enforces per-tier rate limits; RequireScope additionally gates
// individual routes on a granted scope.
package auth
