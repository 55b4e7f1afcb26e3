package otpauth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/quamin-dev/otpauth/internal"
	"github.com/quamin-dev/otpauth/internal/rate"
)

// IssueChallenge generates a fresh 4-digit code for the subject and stores it
// with a full attempt budget. A reissue for the same subject overwrites the
// previous code and resets the budget. The code is returned to the caller,
// which owns delivery (SMS gateway, test harness, logs).
//
// IssueChallenge may return an error when input validation, dependency calls, or security checks fail.
// IssueChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueChallenge(ctx context.Context, subject string) (int, error) {
	if e == nil || e.challengeStore == nil || e.issueLimiter == nil {
		return 0, ErrEngineNotReady
	}

	subject, err := normalizeSubject(subject)
	if err != nil {
		e.emitAudit(ctx, auditEventChallengeIssued, false, subject, "", err, nil)
		return 0, err
	}

	ip := clientIPFromContext(ctx)
	if err := e.issueLimiter.CheckIssue(ctx, ip); err != nil {
		mapped := mapRateLimiterError(err)
		if errors.Is(mapped, ErrRequestLimitExceeded) {
			e.emitRateLimit(ctx, "challenge_issue", subject)
			e.emitAudit(ctx, auditEventChallengeRateLimited, false, subject, "", mapped, nil)
		}
		return 0, mapped
	}

	code, err := internal.NewChallengeCode()
	if err != nil {
		e.emitAudit(ctx, auditEventChallengeIssued, false, subject, "", ErrStoreUnavailable, nil)
		return 0, ErrStoreUnavailable
	}

	record := &challengeRecord{
		Code:              code,
		AttemptsRemaining: uint16(e.config.Challenge.MaxAttempts),
		CreatedAt:         time.Now().Unix(),
		SourceIP:          ip,
	}
	if err := e.challengeStore.Save(ctx, subject, record); err != nil {
		e.emitAudit(ctx, auditEventChallengeIssued, false, subject, "", ErrStoreUnavailable, nil)
		return 0, ErrStoreUnavailable
	}

	e.metricInc(MetricChallengeIssued)
	e.emitAudit(ctx, auditEventChallengeIssued, true, subject, "", nil, func() map[string]string {
		return map[string]string{
			"attempts": strconv.Itoa(e.config.Challenge.MaxAttempts),
		}
	})

	return code, nil
}

// VerifyChallenge checks a submitted code against the subject's stored
// challenge. Outcomes, in evaluation order: no record, expired, attempt budget
// exhausted, wrong code (budget decremented atomically), match. A match leaves
// the record in place so a login flow may consume the same verification
// inline; it does not restore spent attempts.
//
// VerifyChallenge may return an error when input validation, dependency calls, or security checks fail.
// VerifyChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyChallenge(ctx context.Context, subject string, code int) error {
	if e == nil || e.challengeStore == nil {
		return ErrEngineNotReady
	}

	subject, err := normalizeSubject(subject)
	if err != nil {
		e.emitAudit(ctx, auditEventChallengeVerify, false, subject, "", err, nil)
		return err
	}

	remaining, err := e.challengeStore.Verify(ctx, subject, code)
	if err != nil {
		mapped := mapChallengeStoreError(err, remaining)
		switch {
		case errors.Is(mapped, ErrNoRecord):
			e.metricInc(MetricVerifyNoRecord)
		case errors.Is(mapped, ErrChallengeExpired):
			e.metricInc(MetricVerifyExpired)
		case errors.Is(mapped, ErrMaxAttemptsExceeded):
			e.metricInc(MetricVerifyAttemptsExceeded)
		case errors.Is(mapped, ErrCodeInvalid):
			e.metricInc(MetricVerifyInvalid)
		}
		e.emitAudit(ctx, auditEventChallengeVerify, false, subject, "", mapped, nil)
		return mapped
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventChallengeVerify, true, subject, "", nil, nil)

	return nil
}

func mapRateLimiterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrRequestLimitExceeded
	default:
		return ErrStoreUnavailable
	}
}

func mapChallengeStoreError(err error, remaining int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errChallengeNotFound):
		return ErrNoRecord
	case errors.Is(err, errChallengeExpired):
		return ErrChallengeExpired
	case errors.Is(err, errChallengeAttemptsExceeded):
		return ErrMaxAttemptsExceeded
	case errors.Is(err, errChallengeCodeMismatch):
		return &InvalidCodeError{Remaining: remaining}
	default:
		return ErrStoreUnavailable
	}
}
