package resilience

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit is a token-bucket rate: Rate tokens per second refill a bucket
// holding at most Burst.
type Limit struct {
	Rate  float64
	Burst int
}

// PerMinute returns a limit allowing n requests a minute with a burst of n.
func PerMinute(n int) Limit {
	return Limit{Rate: float64(n) / 60, Burst: n}
}

// Enabled reports whether the limit restricts anything.
func (l Limit) Enabled() bool { return l.Rate > 0 && l.Burst > 0 }

// refill is how long an empty bucket takes to fill up again.
func (l Limit) refill() time.Duration {
	return time.Duration(float64(l.Burst) / l.Rate * float64(time.Second))
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one limiter per key, such as a client address.
// Keys idle long enough for their bucket to refill are dropped.
type KeyedLimiter struct {
	limit    Limit
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
	swept    time.Time
}

// NewKeyedLimiter creates a limiter applying l to every key.
func NewKeyedLimiter(l Limit) *KeyedLimiter {
	return &KeyedLimiter{limit: l, now: time.Now, visitors: make(map[string]*visitor)}
}

// Limit returns the configured rate.
func (k *KeyedLimiter) Limit() Limit { return k.limit }

// Allow consumes a token for key. When none is available it reports
// false and how long the caller should wait.
func (k *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	if !k.limit.Enabled() {
		return true, 0
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweep(now)

	v, ok := k.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(k.limit.Rate), k.limit.Burst)}
		k.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops idle keys at most once per refill period.
func (k *KeyedLimiter) sweep(now time.Time) {
	refill := k.limit.refill()
	if now.Sub(k.swept) < refill {
		return
	}
	k.swept = now
	for key, v := range k.visitors {
		if now.Sub(v.lastSeen) >= refill {
			delete(k.visitors, key)
		}
	}
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.visitors)
}
