//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	otpauth "github.com/quamin-dev/otpauth"
	"github.com/redis/go-redis/v9"
)

func newIntegrationEngine(t *testing.T, mutate func(*otpauth.Config)) (*otpauth.Engine, *memoryProvider, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := otpauth.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("integration-secret-key-32-bytes!")
	cfg.RateLimit.EnableIPThrottle = false
	if mutate != nil {
		mutate(&cfg)
	}

	provider := newMemoryProvider()
	engine, err := otpauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithProfileProvider(provider).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, provider, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

type memoryProvider struct {
	mu       sync.RWMutex
	profiles map[string]otpauth.Profile
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{profiles: make(map[string]otpauth.Profile)}
}

func (p *memoryProvider) GetProfile(_ context.Context, subject string) (otpauth.Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	profile, ok := p.profiles[subject]
	if !ok {
		return otpauth.Profile{}, otpauth.ErrProfileNotFound
	}
	return profile, nil
}

func (p *memoryProvider) CreateProfile(_ context.Context, input otpauth.RegisterInput) (otpauth.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.profiles[input.Subject]; ok {
		return otpauth.Profile{}, otpauth.ErrProfileExists
	}
	profile := otpauth.Profile{
		Subject:   input.Subject,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	p.profiles[input.Subject] = profile
	return profile, nil
}

func (p *memoryProvider) SetVerified(_ context.Context, subject string, verified bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile, ok := p.profiles[subject]
	if !ok {
		return otpauth.ErrProfileNotFound
	}
	profile.Verified = verified
	p.profiles[subject] = profile
	return nil
}
