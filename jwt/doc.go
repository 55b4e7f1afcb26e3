// Package jwt wraps github.com/golang-jwt/jwt/v5 as the session-token codec
// for otpauth: it mints and verifies signed, expiring tokens carrying the
// phone subject, the verified flag, display names, and a per-issuance nonce.
//
// # Architecture boundaries
//
// This package owns signing and verification only. It does not consult the
// session registry, the blacklist, or any store — those checks belong to the
// engine's access guard, which composes them in a fixed order.
//
// # What this package must NOT do
//
//   - Import the root otpauth package or the session package.
//   - Generate nonces (the engine supplies them).
//   - Accept unsigned or alg-none tokens under any configuration.
package jwt
