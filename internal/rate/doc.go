// Package rate provides the Redis-backed issuance rate limiter for the
// otpauth engine.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - oi: — challenge issuance per-IP
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in the root engine).
//   - Be imported outside the otpauth module.
package rate
