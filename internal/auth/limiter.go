package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold bounds how many idle client limiters are kept around.
const pruneThreshold = 1024

// LoginLimiter throttles sign-in attempts per client key (usually the client IP).
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLoginLimiter allows perMinute attempts per key per minute, in bursts of perMinute.
// A non-positive perMinute disables throttling.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	l := &LoginLimiter{limiters: make(map[string]*rate.Limiter), limit: rate.Inf, burst: 1}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Allow reports whether key may attempt a sign-in now, consuming one attempt.
func (l *LoginLimiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune()
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter.Allow()
}

// prune drops limiters that have fully refilled; they behave like new ones.
func (l *LoginLimiter) prune() {
	for key, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
