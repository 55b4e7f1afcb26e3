//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"

	otpauth "github.com/quamin-dev/otpauth"
)

// TestFullLifecycle drives the public API through the complete journey:
// register, OTP login, guarded access, supersession, logout, revocation.
func TestFullLifecycle(t *testing.T) {
	engine, _, done := newIntegrationEngine(t, nil)
	defer done()

	ctx := context.Background()
	const mobile = "14155550100"

	// Register: profile created, unverified token minted.
	registerToken, err := engine.Register(ctx, otpauth.RegisterInput{
		Subject:   "+" + mobile,
		FirstName: "Alice",
		LastName:  "Doe",
		District:  "Bagerhat",
		State:     "Khulna",
		Country:   "BD",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+registerToken); !errors.Is(err, otpauth.ErrUnverified) {
		t.Fatalf("registration token must be unverified, got %v", err)
	}

	// OTP login.
	code, err := engine.IssueChallenge(ctx, mobile)
	if err != nil {
		t.Fatalf("IssueChallenge failed: %v", err)
	}
	loginToken, err := engine.LoginWithOTP(ctx, mobile, code)
	if err != nil {
		t.Fatalf("LoginWithOTP failed: %v", err)
	}

	identity, err := engine.Authorize(ctx, "Bearer "+loginToken)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if identity.Subject != mobile || identity.FirstName != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	// A second login supersedes the first session.
	code, err = engine.IssueChallenge(ctx, mobile)
	if err != nil {
		t.Fatalf("second IssueChallenge failed: %v", err)
	}
	secondToken, err := engine.LoginWithOTP(ctx, mobile, code)
	if err != nil {
		t.Fatalf("second LoginWithOTP failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+loginToken); !errors.Is(err, otpauth.ErrTokenInvalid) {
		t.Fatalf("superseded token must fail currency, got %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+secondToken); err != nil {
		t.Fatalf("current token must authorize: %v", err)
	}

	// Logout permanently revokes the current session.
	if err := engine.Logout(ctx, "Bearer "+secondToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+secondToken); err == nil {
		t.Fatal("revoked token must not authorize")
	}
}

func TestAttemptBudgetAcrossLoginAttempts(t *testing.T) {
	engine, provider, done := newIntegrationEngine(t, func(cfg *otpauth.Config) {
		cfg.Challenge.MaxAttempts = 3
	})
	defer done()

	ctx := context.Background()
	const mobile = "14155550100"

	if _, err := provider.CreateProfile(ctx, otpauth.RegisterInput{Subject: mobile}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	code, err := engine.IssueChallenge(ctx, mobile)
	if err != nil {
		t.Fatalf("IssueChallenge failed: %v", err)
	}

	wrong := code + 1
	if wrong > 9999 {
		wrong = 1000
	}

	// Two wrong submissions leave one attempt.
	for i := 0; i < 2; i++ {
		_, err := engine.LoginWithOTP(ctx, mobile, wrong)
		if !errors.Is(err, otpauth.ErrCodeInvalid) {
			t.Fatalf("attempt %d: expected ErrCodeInvalid, got %v", i+1, err)
		}
	}

	// The correct code still works on the final attempt.
	if _, err := engine.LoginWithOTP(ctx, mobile, code); err != nil {
		t.Fatalf("login on last attempt failed: %v", err)
	}
}

func TestChallengeBudgetExhaustionRequiresReissue(t *testing.T) {
	engine, provider, done := newIntegrationEngine(t, nil)
	defer done()

	ctx := context.Background()
	const mobile = "14155550100"

	if _, err := provider.CreateProfile(ctx, otpauth.RegisterInput{Subject: mobile}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	code, err := engine.IssueChallenge(ctx, mobile)
	if err != nil {
		t.Fatalf("IssueChallenge failed: %v", err)
	}

	wrong := code + 1
	if wrong > 9999 {
		wrong = 1000
	}

	for i := 0; i < 2; i++ {
		if _, err := engine.LoginWithOTP(ctx, mobile, wrong); !errors.Is(err, otpauth.ErrCodeInvalid) {
			t.Fatalf("attempt %d: expected ErrCodeInvalid, got %v", i+1, err)
		}
	}
	if _, err := engine.LoginWithOTP(ctx, mobile, wrong); !errors.Is(err, otpauth.ErrMaxAttemptsExceeded) {
		t.Fatalf("expected ErrMaxAttemptsExceeded, got %v", err)
	}
	if _, err := engine.LoginWithOTP(ctx, mobile, code); !errors.Is(err, otpauth.ErrMaxAttemptsExceeded) {
		t.Fatalf("correct code after exhaustion: expected ErrMaxAttemptsExceeded, got %v", err)
	}

	// Fresh issuance restores the flow.
	code, err = engine.IssueChallenge(ctx, mobile)
	if err != nil {
		t.Fatalf("reissue failed: %v", err)
	}
	if _, err := engine.LoginWithOTP(ctx, mobile, code); err != nil {
		t.Fatalf("login after reissue failed: %v", err)
	}
}

func TestPerIPIssuanceThrottleIntegration(t *testing.T) {
	engine, _, done := newIntegrationEngine(t, func(cfg *otpauth.Config) {
		cfg.RateLimit.EnableIPThrottle = true
		cfg.RateLimit.MaxIssuesPerIP = 2
	})
	defer done()

	ctx := otpauth.WithClientIP(context.Background(), "198.51.100.7")

	for i := 0; i < 2; i++ {
		if _, err := engine.IssueChallenge(ctx, "14155550100"); err != nil {
			t.Fatalf("issue %d failed: %v", i+1, err)
		}
	}
	if _, err := engine.IssueChallenge(ctx, "14155550100"); !errors.Is(err, otpauth.ErrRequestLimitExceeded) {
		t.Fatalf("expected ErrRequestLimitExceeded, got %v", err)
	}
}
