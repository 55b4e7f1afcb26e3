package otpauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func loginTestSubject(t *testing.T, engine *Engine, provider *mockProfileProvider, subject string) string {
	t.Helper()
	ctx := context.Background()

	provider.put(Profile{Subject: subject, FirstName: "Alice", LastName: "Doe"})

	code, err := engine.IssueChallenge(ctx, subject)
	if err != nil {
		t.Fatalf("IssueChallenge failed: %v", err)
	}
	token, err := engine.LoginWithOTP(ctx, subject, code)
	if err != nil {
		t.Fatalf("LoginWithOTP failed: %v", err)
	}
	return token
}

func TestAuthorizeAllowsCurrentSession(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	token := loginTestSubject(t, engine, provider, "14155550100")

	identity, err := engine.Authorize(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if identity.Subject != "14155550100" || !identity.Verified {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.FirstName != "Alice" || identity.LastName != "Doe" {
		t.Fatalf("expected claim names in identity, got %+v", identity)
	}
	if identity.Nonce == "" {
		t.Fatal("expected nonce in identity")
	}
	if identity.ExpiresAt.IsZero() {
		t.Fatal("expected expiry in identity")
	}
}

func TestAuthorizeMissingOrMalformedHeader(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, _ := newTestEngine(t, rdb, testConfig())
	defer engine.Close()
	ctx := context.Background()

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "token-without-scheme"} {
		if _, err := engine.Authorize(ctx, header); !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("header %q: expected ErrTokenNotFound, got %v", header, err)
		}
	}
}

func TestAuthorizeBearerSchemeCaseInsensitive(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	token := loginTestSubject(t, engine, provider, "14155550100")

	if _, err := engine.Authorize(context.Background(), "bearer "+token); err != nil {
		t.Fatalf("lowercase scheme must authorize: %v", err)
	}
}

func TestAuthorizeTamperedToken(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	token := loginTestSubject(t, engine, provider, "14155550100")
	tampered := token[:len(token)-2] + "xx"

	if _, err := engine.Authorize(context.Background(), "Bearer "+tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthorizeExpiredToken(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	cfg.JWT.TokenTTL = time.Nanosecond

	engine, provider := newTestEngine(t, rdb, cfg)
	defer engine.Close()

	token := loginTestSubject(t, engine, provider, "14155550100")
	time.Sleep(10 * time.Millisecond)

	if _, err := engine.Authorize(context.Background(), "Bearer "+token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthorizeBlacklistedAfterLogout(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()
	ctx := context.Background()

	token := loginTestSubject(t, engine, provider, "14155550100")

	if err := engine.Logout(ctx, "Bearer "+token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// Blacklist outranks the verified flag: even after re-verifying the
	// profile, the revoked nonce stays dead.
	if err := provider.SetVerified(ctx, "14155550100", true); err != nil {
		t.Fatalf("SetVerified failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+token); !errors.Is(err, ErrBlacklisted) {
		t.Fatalf("expected ErrBlacklisted, got %v", err)
	}
}

func TestAuthorizeUnverifiedBeforeBlacklist(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()
	ctx := context.Background()

	token := loginTestSubject(t, engine, provider, "14155550100")
	if err := engine.Logout(ctx, "Bearer "+token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// After logout the claim still says verified but the guard rejects on the
	// blacklist; a token minted while unverified is rejected earlier.
	if _, err := engine.Authorize(ctx, "Bearer "+token); !errors.Is(err, ErrBlacklisted) {
		t.Fatalf("expected ErrBlacklisted, got %v", err)
	}

	registerToken, err := engine.Register(ctx, RegisterInput{Subject: "14155550200"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer "+registerToken); !errors.Is(err, ErrUnverified) {
		t.Fatalf("expected ErrUnverified, got %v", err)
	}
}

func TestAuthorizePassesWhenRegistryEntryExpired(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()
	ctx := context.Background()

	token := loginTestSubject(t, engine, provider, "14155550100")

	// Simulate the registry record's TTL elapsing while the token lives on.
	if err := engine.sessionStore.Delete(ctx, "14155550100"); err != nil {
		t.Fatalf("session Delete failed: %v", err)
	}

	if _, err := engine.Authorize(ctx, "Bearer "+token); err != nil {
		t.Fatalf("token must pass currency with no registry entry: %v", err)
	}
}

func TestAuthorizeFailsClosedWhenStoreDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	token := loginTestSubject(t, engine, provider, "14155550100")

	mr.Close()

	if _, err := engine.Authorize(context.Background(), "Bearer "+token); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthorizeMetrics(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, provider := newTestEngine(t, rdb, testConfig())
	defer engine.Close()
	ctx := context.Background()

	token := loginTestSubject(t, engine, provider, "14155550100")

	if _, err := engine.Authorize(ctx, "Bearer "+token); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if _, err := engine.Authorize(ctx, "Bearer garbage"); err == nil {
		t.Fatal("expected denial for garbage token")
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[MetricAuthorizeAllow] != 1 {
		t.Fatalf("expected 1 allow, got %d", snapshot.Counters[MetricAuthorizeAllow])
	}
	if snapshot.Counters[MetricAuthorizeDenied] != 1 {
		t.Fatalf("expected 1 denial, got %d", snapshot.Counters[MetricAuthorizeDenied])
	}
}
