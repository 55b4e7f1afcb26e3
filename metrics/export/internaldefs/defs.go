package internaldefs

import (
	otpauth "github.com/quamin-dev/otpauth"
)

// CounterDef defines a public type used by otpauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by otpauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the OTP engine.
var CounterDefs = []CounterDef{
	{ID: otpauth.MetricChallengeIssued, Name: "otpauth_challenge_issued_total", Help: "Issued OTP challenges."},
	{ID: otpauth.MetricChallengeRateLimited, Name: "otpauth_challenge_rate_limited_total", Help: "Rate-limited challenge issuance attempts."},
	{ID: otpauth.MetricVerifySuccess, Name: "otpauth_verify_success_total", Help: "Successful code verifications."},
	{ID: otpauth.MetricVerifyInvalid, Name: "otpauth_verify_invalid_total", Help: "Verifications rejected for a wrong code."},
	{ID: otpauth.MetricVerifyExpired, Name: "otpauth_verify_expired_total", Help: "Verifications rejected for an expired challenge."},
	{ID: otpauth.MetricVerifyNoRecord, Name: "otpauth_verify_no_record_total", Help: "Verifications with no stored challenge."},
	{ID: otpauth.MetricVerifyAttemptsExceeded, Name: "otpauth_verify_attempts_exceeded_total", Help: "Verifications rejected for an exhausted attempt budget."},
	{ID: otpauth.MetricLoginSuccess, Name: "otpauth_login_success_total", Help: "Successful OTP logins."},
	{ID: otpauth.MetricLoginFailure, Name: "otpauth_login_failure_total", Help: "Failed OTP logins."},
	{ID: otpauth.MetricRegisterSuccess, Name: "otpauth_register_success_total", Help: "Successful registrations."},
	{ID: otpauth.MetricRegisterFailure, Name: "otpauth_register_failure_total", Help: "Failed registrations."},
	{ID: otpauth.MetricAuthorizeAllow, Name: "otpauth_authorize_allow_total", Help: "Requests passed by the access guard."},
	{ID: otpauth.MetricAuthorizeDenied, Name: "otpauth_authorize_denied_total", Help: "Requests rejected by the access guard."},
	{ID: otpauth.MetricLogout, Name: "otpauth_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the OTP engine.
var HistogramDefs = []HistogramDef{
	{ID: otpauth.MetricAuthorizeLatency, Name: "otpauth_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the OTP engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the OTP engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
