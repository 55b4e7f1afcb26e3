// Package internal holds shared primitives for the otpauth module: challenge
// code generation and other helpers that must stay out of the public API.
//
// # What this package must NOT do
//
//   - Import the root otpauth package or any sibling that does (no cycles).
//   - Perform Redis or network I/O.
package internal
