package otpauth

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRecord is an exported constant or variable used by the OTP engine.
	ErrNoRecord = errors.New("no challenge for subject")
	// ErrCodeInvalid is an exported constant or variable used by the OTP engine.
	ErrCodeInvalid = errors.New("invalid code")
	// ErrChallengeExpired is an exported constant or variable used by the OTP engine.
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrMaxAttemptsExceeded is an exported constant or variable used by the OTP engine.
	ErrMaxAttemptsExceeded = errors.New("challenge attempt budget exhausted")
	// ErrRequestLimitExceeded is an exported constant or variable used by the OTP engine.
	ErrRequestLimitExceeded = errors.New("issuance request limit exceeded")
	// ErrSubjectInvalid is an exported constant or variable used by the OTP engine.
	ErrSubjectInvalid = errors.New("invalid subject identifier")
	// ErrTokenNotFound is an exported constant or variable used by the OTP engine.
	ErrTokenNotFound = errors.New("bearer token not found")
	// ErrTokenExpired is an exported constant or variable used by the OTP engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is an exported constant or variable used by the OTP engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrUnverified is an exported constant or variable used by the OTP engine.
	ErrUnverified = errors.New("subject unverified")
	// ErrBlacklisted is an exported constant or variable used by the OTP engine.
	ErrBlacklisted = errors.New("token blacklisted")
	// ErrProfileNotFound is an exported constant or variable used by the OTP engine.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is an exported constant or variable used by the OTP engine.
	ErrProfileExists = errors.New("profile already exists")
	// ErrStoreUnavailable is an exported constant or variable used by the OTP engine.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the OTP engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// InvalidCodeError reports a wrong submitted code while the attempt budget is
// not yet exhausted. It matches [ErrCodeInvalid] under [errors.Is] so callers
// can branch on the kind without losing the remaining-attempt count.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code: %d attempts remaining", e.Remaining)
}

// Is reports whether target is [ErrCodeInvalid].
func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrCodeInvalid
}
