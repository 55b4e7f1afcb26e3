package otpauth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventChallengeIssued      = "challenge_issued"
	auditEventChallengeRateLimited = "challenge_rate_limited"
	auditEventChallengeVerify      = "challenge_verify"
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventRegisterSuccess      = "register_success"
	auditEventRegisterFailure      = "register_failure"
	auditEventAuthorizeAllow       = "authorize_allow"
	auditEventAuthorizeDenied      = "authorize_denied"
	auditEventLogout               = "logout"
	auditEventRateLimitTriggered   = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by otpauth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrNoRecord         AuditErrorCode = "no_record"
	auditErrCodeInvalid      AuditErrorCode = "code_invalid"
	auditErrChallengeExpired AuditErrorCode = "challenge_expired"
	auditErrAttemptsExceeded AuditErrorCode = "attempts_exceeded"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrSubjectInvalid   AuditErrorCode = "subject_invalid"
	auditErrTokenNotFound    AuditErrorCode = "token_not_found"
	auditErrTokenExpired     AuditErrorCode = "token_expired"
	auditErrTokenInvalid     AuditErrorCode = "token_invalid"
	auditErrUnverified       AuditErrorCode = "unverified"
	auditErrBlacklisted      AuditErrorCode = "blacklisted"
	auditErrProfileNotFound  AuditErrorCode = "profile_not_found"
	auditErrProfileExists    AuditErrorCode = "profile_exists"
	auditErrStoreUnavailable AuditErrorCode = "store_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	nonce string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		Nonce:     nonce,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(ctx context.Context, scope string, subject string) {
	e.metricInc(MetricChallengeRateLimited)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, subject, "", nil, func() map[string]string {
		return map[string]string{
			"scope": scope,
		}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoRecord):
		return auditErrNoRecord
	case errors.Is(err, ErrCodeInvalid):
		return auditErrCodeInvalid
	case errors.Is(err, ErrChallengeExpired):
		return auditErrChallengeExpired
	case errors.Is(err, ErrMaxAttemptsExceeded):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrRequestLimitExceeded):
		return auditErrRateLimited
	case errors.Is(err, ErrSubjectInvalid):
		return auditErrSubjectInvalid
	case errors.Is(err, ErrTokenNotFound):
		return auditErrTokenNotFound
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrUnverified):
		return auditErrUnverified
	case errors.Is(err, ErrBlacklisted):
		return auditErrBlacklisted
	case errors.Is(err, ErrProfileNotFound):
		return auditErrProfileNotFound
	case errors.Is(err, ErrProfileExists):
		return auditErrProfileExists
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}
