package otpauth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quamin-dev/otpauth/session"
)

// LoginWithOTP verifies the submitted code for the subject and, on success,
// marks the profile verified, mints a session token, and records it as the
// subject's single current session. Any previously recorded session is
// superseded: its token stays signature-valid but fails the currency check.
//
// LoginWithOTP may return an error when input validation, dependency calls, or security checks fail.
// LoginWithOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginWithOTP(ctx context.Context, subject string, code int) (string, error) {
	if e == nil || e.profiles == nil || e.jwtManager == nil || e.sessionStore == nil {
		return "", ErrEngineNotReady
	}

	subject, err := normalizeSubject(subject)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, subject, "", err, nil)
		return "", err
	}

	if err := e.VerifyChallenge(ctx, subject, code); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, subject, "", err, nil)
		return "", err
	}

	if err := e.profiles.SetVerified(ctx, subject, true); err != nil {
		mapped := mapProfileError(err)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, subject, "", mapped, nil)
		return "", mapped
	}

	profile, err := e.profiles.GetProfile(ctx, subject)
	if err != nil {
		mapped := mapProfileError(err)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, subject, "", mapped, nil)
		return "", mapped
	}

	token, nonce, err := e.mintSession(ctx, subject, true, profile.FirstName, profile.LastName)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, subject, "", err, nil)
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, subject, nonce, nil, nil)

	return token, nil
}

// Register creates a profile via the provider and mints an initial session
// token carrying the profile's current verified flag. A freshly created
// profile is unverified, so the minted token passes signature checks but is
// rejected by the access guard until the subject completes an OTP login.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (string, error) {
	if e == nil || e.profiles == nil || e.jwtManager == nil || e.sessionStore == nil {
		return "", ErrEngineNotReady
	}

	subject, err := normalizeSubject(input.Subject)
	if err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, input.Subject, "", err, nil)
		return "", err
	}
	input.Subject = subject

	profile, err := e.profiles.CreateProfile(ctx, input)
	if err != nil {
		mapped := mapProfileError(err)
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, subject, "", mapped, nil)
		return "", mapped
	}

	token, nonce, err := e.mintSession(ctx, subject, profile.Verified, profile.FirstName, profile.LastName)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, subject, "", err, nil)
		return "", err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, subject, nonce, nil, nil)

	return token, nil
}

// mintSession creates a fresh-nonce token and records it as the subject's
// current session. The registry record carries the token TTL so it self-cleans
// together with the token's own expiry.
func (e *Engine) mintSession(ctx context.Context, subject string, verified bool, firstName, lastName string) (string, string, error) {
	nonce := uuid.NewString()

	token, err := e.jwtManager.Create(subject, verified, firstName, lastName, nonce)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	record := &session.Record{
		Subject:   subject,
		Nonce:     nonce,
		Token:     token,
		CreatedAt: time.Now().Unix(),
	}
	if err := e.sessionStore.RecordActive(ctx, record, e.config.JWT.TokenTTL); err != nil {
		return "", "", ErrStoreUnavailable
	}

	return token, nonce, nil
}

func mapProfileError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProfileNotFound):
		return ErrProfileNotFound
	case errors.Is(err, ErrProfileExists):
		return ErrProfileExists
	default:
		return ErrStoreUnavailable
	}
}
