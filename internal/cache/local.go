package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localIdleTTL is how long an unused per-key bucket is kept.
const localIdleTTL = 10 * time.Minute

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when no Redis
// is configured. Buckets are not shared between instances.
type LocalLimiter struct {
	rps   float64
	burst int
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

// NewLocalLimiter creates an in-process limiter.
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		rps:     rps,
		burst:   burst,
		now:     time.Now,
		buckets: make(map[string]*localBucket),
	}
}

// Allow consumes one token for key.
func (l *LocalLimiter) Allow(_ context.Context, key string) (*RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	result := &RateLimitResult{
		Allowed:   allowed,
		Remaining: int64(math.Max(0, math.Floor(tokens))),
		ResetAt:   now.Add(refillInterval(l.rps)),
	}
	if !allowed {
		missing := 1 - tokens
		result.RetryAfter = time.Duration(math.Ceil(missing/l.rps)) * time.Second
	}
	return result, nil
}

// sweep drops idle buckets at most once per idle period.
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < localIdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > localIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
