package otpauth

import (
	"context"
	"errors"
)

// Logout revokes the session carried by the Authorization header: the token's
// nonce is permanently blacklisted and the profile's verified flag is cleared
// so the next access requires a fresh OTP login. The session record is left
// untouched; it is the currency evidence that keeps superseded tokens denied,
// and its TTL reaps it. An expired token is still accepted here so a stale
// client can always log out. Repeating a logout with the same token is a no-op.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, authorization string) error {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil || e.profiles == nil {
		return ErrEngineNotReady
	}

	token, err := bearerToken(authorization)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", err, nil)
		return err
	}

	claims, err := e.jwtManager.ParseAllowExpired(token)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", ErrTokenInvalid, nil)
		return ErrTokenInvalid
	}

	if err := e.sessionStore.Blacklist(ctx, claims.Nonce); err != nil {
		e.emitAudit(ctx, auditEventLogout, false, claims.Phone, claims.Nonce, ErrStoreUnavailable, nil)
		return ErrStoreUnavailable
	}

	if err := e.profiles.SetVerified(ctx, claims.Phone, false); err != nil && !errors.Is(err, ErrProfileNotFound) {
		e.emitAudit(ctx, auditEventLogout, false, claims.Phone, claims.Nonce, ErrStoreUnavailable, nil)
		return ErrStoreUnavailable
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, claims.Phone, claims.Nonce, nil, nil)

	return nil
}
