package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketIdleTTL is how long Redis keeps a bucket nobody has touched.
const bucketIdleTTL = time.Minute

// RateLimitResult is the outcome of one Allow call.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

// allowScript refills and consumes a token bucket atomically. Times are in
// milliseconds. It returns {allowed, remaining, wait_ms}.
var allowScript = redis.NewScript(`
local rate_ms = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 't', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = burst
  ts = now
end

if now > ts then
  tokens = math.min(burst, tokens + (now - ts) * rate_ms)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) / rate_ms)
end

redis.call('HSET', KEYS[1], 't', tostring(tokens), 'ts', tostring(now))
redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[4]))

return {allowed, math.floor(tokens), wait}
`)

// RedisLimiter is a token bucket per key shared by every API instance.
type RedisLimiter struct {
	client *redis.Client
	scope  string
	rps    float64
	burst  int
	now    func() time.Time
}

// NewRedisLimiter returns a limiter whose buckets live under scope.
func NewRedisLimiter(c *Cache, scope string, rps float64, burst int) *RedisLimiter {
	return &RedisLimiter{
		client: c.client,
		scope:  scope,
		rps:    rps,
		burst:  burst,
		now:    time.Now,
	}
}

// Allow consumes one token for key. Redis errors are returned to the caller,
// which decides whether to fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	now := l.now()

	out, err := allowScript.Run(ctx, l.client,
		[]string{l.bucketKey(key)},
		l.rps/1000, l.burst, now.UnixMilli(), bucketIdleTTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", l.scope, err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", l.scope, out)
	}

	res := &RateLimitResult{
		Allowed:   out[0] == 1,
		Remaining: out[1],
		ResetAt:   now.Add(refillInterval(l.rps)),
	}
	if !res.Allowed {
		res.RetryAfter = time.Duration(out[2]) * time.Millisecond
	}
	return res, nil
}

// bucketKey maps a client key to its Redis key. Client identifiers are
// hashed so raw IP addresses are never written to Redis.
func (l *RedisLimiter) bucketKey(key string) string {
	return keyNamespace + "ratelimit:" + l.scope + ":" + hashIP(key)
}

// refillInterval is the time one token takes to come back.
func refillInterval(rps float64) time.Duration {
	if rps <= 0 {
		return bucketIdleTTL
	}
	return time.Duration(float64(time.Second) / rps)
}

// hashIP returns the first 8 bytes of the SHA-256 of ip, hex encoded.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
