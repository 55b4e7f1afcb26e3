// Package middleware exposes an HTTP middleware adapter for the otpauth
// engine's ordered access guard.
//
// # Guards
//
//   - [Guard] — reads the Authorization header, runs Engine.Authorize, and
//     injects the resulting Identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Authorize.
package middleware
