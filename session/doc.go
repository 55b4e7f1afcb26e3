// Package session provides Redis-backed session-registry persistence and
// compact binary record encoding for the otpauth access guard's hot path.
//
// # Binary encoding
//
// Records are stored in Redis as a compact binary format (schema version v1).
// The encoder is append-only: new versions add fields but never reinterpret
// old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Record] model. It
// does NOT interpret JWT tokens or enforce authentication policy — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import otpauth or jwt (no upward imports).
//   - Perform application-level authorization decisions.
//   - Expire blacklist entries (revocation is permanent).
package session
