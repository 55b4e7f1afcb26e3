package otpauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quamin-dev/otpauth/jwt"
	"github.com/quamin-dev/otpauth/session"
)

// Authorize runs the ordered access-guard pipeline over an Authorization
// header value and returns the caller's [Identity] when every check passes.
//
// Check order is fixed and short-circuits on the first failure:
//
//  1. bearer extraction: missing or malformed header is [ErrTokenNotFound]
//  2. token parse: expiry maps to [ErrTokenExpired], any other parse failure
//     to [ErrTokenInvalid]
//  3. verified flag: an unverified claim set is [ErrUnverified]
//  4. nonce blacklist: a revoked nonce is [ErrBlacklisted]
//  5. currency: the token's nonce must match the subject's recorded session;
//     a superseded token is [ErrTokenInvalid]
//
// A subject with no recorded session passes the currency check: the registry
// entry may simply have expired alongside a still-valid token.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authorize(ctx context.Context, authorization string) (*Identity, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	identity, err := e.authorize(ctx, authorization)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
	}

	if err != nil {
		e.metricInc(MetricAuthorizeDenied)
		subject := ""
		nonce := ""
		if identity != nil {
			subject = identity.Subject
			nonce = identity.Nonce
		}
		e.emitAudit(ctx, auditEventAuthorizeDenied, false, subject, nonce, err, nil)
		return nil, err
	}

	e.metricInc(MetricAuthorizeAllow)
	e.emitAudit(ctx, auditEventAuthorizeAllow, true, identity.Subject, identity.Nonce, nil, nil)

	return identity, nil
}

// authorize returns a partially filled Identity alongside some errors so the
// audit path can attribute the denial to a subject.
func (e *Engine) authorize(ctx context.Context, authorization string) (*Identity, error) {
	token, err := bearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		if jwt.IsExpired(err) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	identity := &Identity{
		Subject:   claims.Phone,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Verified:  claims.Verified,
		Nonce:     claims.Nonce,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	if !claims.Verified {
		return identity, ErrUnverified
	}

	revoked, err := e.sessionStore.IsBlacklisted(ctx, claims.Nonce)
	if err != nil {
		return identity, ErrStoreUnavailable
	}
	if revoked {
		return identity, ErrBlacklisted
	}

	current, err := e.sessionStore.Current(ctx, claims.Phone)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return identity, nil
		}
		return identity, ErrStoreUnavailable
	}
	if current.Nonce != claims.Nonce {
		return identity, ErrTokenInvalid
	}

	return identity, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// value. The scheme match is case-insensitive.
func bearerToken(authorization string) (string, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return "", ErrTokenNotFound
	}

	const prefix = "bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", ErrTokenNotFound
	}

	token := strings.TrimSpace(authorization[len(prefix):])
	if token == "" {
		return "", ErrTokenNotFound
	}

	return token, nil
}
