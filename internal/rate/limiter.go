package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds issuance rate limiter tuning parameters.
type Config struct {
	EnableIPThrottle bool
	MaxIssuesPerIP   int
	IssueWindow      time.Duration
}

// Limiter enforces the per-IP challenge issuance budget using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckIssue records one issuance attempt from ip and returns ErrRateLimited
// once the fixed-window budget is exceeded. The counter is incremented even
// when the call is rejected, so a throttled client cannot reset its window by
// retrying.
func (l *Limiter) CheckIssue(ctx context.Context, ip string) error {
	if !l.config.EnableIPThrottle || ip == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, issueIPKey(ip), l.config.IssueWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxIssuesPerIP) {
		return ErrRateLimited
	}

	return nil
}

// IssueCount returns the current issuance counter for an IP. Missing keys
// return zero.
func (l *Limiter) IssueCount(ctx context.Context, ip string) (int, error) {
	count, err := l.redis.Get(ctx, issueIPKey(ip)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func issueIPKey(ip string) string {
	return "oi:" + ip
}
