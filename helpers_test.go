package otpauth

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret-key-test-secret-key!")
	cfg.RateLimit.EnableIPThrottle = false
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, cfg Config) (*Engine, *mockProfileProvider) {
	t.Helper()

	provider := newMockProfileProvider()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithProfileProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	return engine, provider
}

type mockProfileProvider struct {
	mu       sync.RWMutex
	profiles map[string]Profile

	getErr error
	setErr error
}

func newMockProfileProvider() *mockProfileProvider {
	return &mockProfileProvider{
		profiles: make(map[string]Profile),
	}
}

func (p *mockProfileProvider) put(profile Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.Subject] = profile
}

func (p *mockProfileProvider) GetProfile(_ context.Context, subject string) (Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.getErr != nil {
		return Profile{}, p.getErr
	}
	profile, ok := p.profiles[subject]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (p *mockProfileProvider) CreateProfile(_ context.Context, input RegisterInput) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.profiles[input.Subject]; ok {
		return Profile{}, ErrProfileExists
	}

	profile := Profile{
		Subject:   input.Subject,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	p.profiles[input.Subject] = profile
	return profile, nil
}

func (p *mockProfileProvider) SetVerified(_ context.Context, subject string, verified bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.setErr != nil {
		return p.setErr
	}
	profile, ok := p.profiles[subject]
	if !ok {
		return ErrProfileNotFound
	}
	profile.Verified = verified
	p.profiles[subject] = profile
	return nil
}

func (p *mockProfileProvider) verified(subject string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profiles[subject].Verified
}
