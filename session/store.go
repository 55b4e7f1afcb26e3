package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is an exported constant or variable used by the OTP engine.
	ErrNotFound = errors.New("session record not found")
	// ErrRedisUnavailable is an exported constant or variable used by the OTP engine.
	ErrRedisUnavailable = errors.New("session redis unavailable")
)

// Store is the session registry: one current [Record] per subject plus the
// permanent nonce blacklist.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a registry [Store] with the given key prefix.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "os"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) recordKey(subject string) string {
	return s.prefix + ":r:" + subject
}

func (s *Store) blacklistKey(nonce string) string {
	return s.prefix + ":b:" + nonce
}

// RecordActive overwrites the subject's session record. Last writer wins; the
// superseded token remains signature-valid but is no longer current. The TTL
// should match the token lifetime so the registry self-cleans.
func (s *Store) RecordActive(ctx context.Context, record *Record, ttl time.Duration) error {
	encoded, err := Encode(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.recordKey(record.Subject), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Current returns the subject's canonical session record, or [ErrNotFound]
// when no session has been recorded (or the record's TTL elapsed).
func (s *Store) Current(ctx context.Context, subject string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.recordKey(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return record, nil
}

// Delete removes the subject's session record. Idempotent: deleting an absent
// record is not an error.
func (s *Store) Delete(ctx context.Context, subject string) error {
	if err := s.redis.Del(ctx, s.recordKey(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Blacklist marks a nonce as permanently revoked. Idempotent; there is no
// un-blacklist operation. Entries carry no TTL.
func (s *Store) Blacklist(ctx context.Context, nonce string) error {
	if err := s.redis.Set(ctx, s.blacklistKey(nonce), "1", 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsBlacklisted reports whether the nonce has been revoked.
func (s *Store) IsBlacklisted(ctx context.Context, nonce string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.blacklistKey(nonce)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}
