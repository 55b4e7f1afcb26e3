// Package otpauth provides a phone-number OTP authentication engine with signed
// session tokens, Redis-backed challenge state, single-active-session
// enforcement, and a permanent nonce blacklist.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// otpauth is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (Identity, MetricsSnapshot, etc.). Session persistence lives in
// the session subpackage, token signing in the jwt subpackage, and rate-limit
// primitives under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store records, or encoding details in its public API.
//   - Deliver OTP codes. IssueChallenge returns the code to the caller; SMS or
//     voice delivery is the embedding application's responsibility.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//
// # Concurrency contract
//
// The engine holds no mutable state between calls. All durable state lives in
// Redis and is mutated through atomic primitives: a Lua script for the
// challenge attempt decrement, INCR+EXPIRE fixed windows for issuance
// throttling, and plain overwrites for session currency.
package otpauth
