package otpauth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	challengeRecordVersionV1 = 1
)

var (
	errChallengeNotFound         = errors.New("challenge record not found")
	errChallengeExpired          = errors.New("challenge record expired")
	errChallengeCodeMismatch     = errors.New("challenge code mismatch")
	errChallengeAttemptsExceeded = errors.New("challenge attempts exceeded")
	errChallengeRedisUnavailable = errors.New("challenge redis unavailable")
)

// verifyChallengeLua atomically performs GET→validate→patch on a challenge
// record, so two concurrent verify calls can never both observe the same
// attemptsRemaining value.
//
// KEYS[1] = record key
// ARGV[1] = submitted code (int string)
// ARGV[2] = current unix timestamp (int string)
// ARGV[3] = challenge TTL in seconds (int string)
//
// Record layout (1-indexed byte positions):
//
//	version(1) code(2-3 big-endian) attemptsRemaining(4-5 big-endian)
//	createdAt(6-13 big-endian) ipLen(14-15) ip(variable)
//
// Returns:
//
//	{1, attemptsRemaining} on a code match (record left in place)
//	{0, attemptsRemaining} on a mismatch with budget still remaining
//	error string: "no_record", "expired", "attempts_exceeded"
var verifyChallengeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='no_record'}
end

local submitted = tonumber(ARGV[1])
local nowUnix = tonumber(ARGV[2])
local ttlSec = tonumber(ARGV[3])

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return {err='no_record'}
end

local code = string.byte(data, 2) * 256 + string.byte(data, 3)
local attempts = string.byte(data, 4) * 256 + string.byte(data, 5)

local c0,c1,c2,c3,c4,c5,c6,c7 = string.byte(data, 6, 13)
local createdAt = c0
for _, b in ipairs({c1,c2,c3,c4,c5,c6,c7}) do
  createdAt = createdAt * 256 + b
end

if nowUnix - createdAt > ttlSec then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if attempts <= 0 then
  return {err='attempts_exceeded'}
end

if code ~= submitted then
  attempts = attempts - 1
  local newData = string.sub(data, 1, 3) .. string.char(math.floor(attempts / 256), attempts % 256) .. string.sub(data, 6)
  local ttlMs = redis.call('PTTL', KEYS[1])
  if ttlMs <= 0 then
    redis.call('DEL', KEYS[1])
    return {err='expired'}
  end
  redis.call('SET', KEYS[1], newData, 'PX', ttlMs)
  if attempts <= 0 then
    return {err='attempts_exceeded'}
  end
  return {0, attempts}
end

return {1, attempts}
`)

type challengeRecord struct {
	Code              int
	AttemptsRemaining uint16
	CreatedAt         int64
	SourceIP          string
}

type challengeStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func newChallengeStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *challengeStore {
	if prefix == "" {
		prefix = "oc"
	}
	return &challengeStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *challengeStore) key(subject string) string {
	return s.prefix + ":" + subject
}

// Save upserts the challenge record for subject: a reissue overwrites the
// code, resets the attempt budget, and refreshes createdAt.
func (s *challengeStore) Save(ctx context.Context, subject string, record *challengeRecord) error {
	encoded, err := encodeChallengeRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(subject), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	return nil
}

// Verify runs the atomic verification script. On success the record is left in
// place with its budget untouched, so an inline login flow may observe the
// verified result again without a fresh issuance. The returned int is the
// attempt budget remaining after the call.
func (s *challengeStore) Verify(ctx context.Context, subject string, code int) (int, error) {
	result, err := verifyChallengeLua.Run(ctx, s.redis,
		[]string{s.key(subject)},
		code,
		time.Now().Unix(),
		int(s.ttl/time.Second),
	).Result()

	if err != nil {
		switch err.Error() {
		case "no_record":
			return 0, errChallengeNotFound
		case "expired":
			return 0, errChallengeExpired
		case "attempts_exceeded":
			return 0, errChallengeAttemptsExceeded
		default:
			return 0, fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
		}
	}

	reply, ok := result.([]interface{})
	if !ok || len(reply) != 2 {
		return 0, fmt.Errorf("%w: unexpected lua result shape", errChallengeRedisUnavailable)
	}

	matched, ok1 := reply[0].(int64)
	remaining, ok2 := reply[1].(int64)
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%w: unexpected lua result type", errChallengeRedisUnavailable)
	}

	if matched != 1 {
		return int(remaining), errChallengeCodeMismatch
	}

	return int(remaining), nil
}

// Get reads the raw record without touching the attempt budget. Expiry is
// still enforced: a record past the TTL reads as absent.
func (s *challengeStore) Get(ctx context.Context, subject string) (*challengeRecord, error) {
	data, err := s.redis.Get(ctx, s.key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	record, err := decodeChallengeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	if time.Now().Unix()-record.CreatedAt > int64(s.ttl/time.Second) {
		return nil, errChallengeExpired
	}

	return record, nil
}

// Delete removes the challenge record. Idempotent.
func (s *challengeStore) Delete(ctx context.Context, subject string) error {
	if err := s.redis.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}
	return nil
}

func encodeChallengeRecord(record *challengeRecord) ([]byte, error) {
	if record.Code < 0 || record.Code > 65535 {
		return nil, errors.New("challenge code out of range")
	}

	var buf bytes.Buffer

	buf.WriteByte(challengeRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, uint16(record.Code)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.AttemptsRemaining); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}

	if len(record.SourceIP) > 65535 {
		return nil, errors.New("challenge source ip too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.SourceIP))); err != nil {
		return nil, err
	}
	buf.WriteString(record.SourceIP)

	return buf.Bytes(), nil
}

func decodeChallengeRecord(data []byte) (*challengeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != challengeRecordVersionV1 {
		return nil, errors.New("invalid challenge record version")
	}

	var code uint16
	if err := binary.Read(reader, binary.BigEndian, &code); err != nil {
		return nil, err
	}

	record := &challengeRecord{Code: int(code)}

	if err := binary.Read(reader, binary.BigEndian, &record.AttemptsRemaining); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	var ipLen uint16
	if err := binary.Read(reader, binary.BigEndian, &ipLen); err != nil {
		return nil, err
	}

	ip := make([]byte, ipLen)
	if _, err := io.ReadFull(reader, ip); err != nil {
		return nil, err
	}
	record.SourceIP = string(ip)

	return record, nil
}
