// Package ratelimit defines the rate-limiter contract shared by the
// in-process and distributed (Redis-backed) limiter implementations.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the result of a limit check.
type Result struct {
	Allowed   bool
	Remaining int64
	Reset     time.Duration
}

// Limiter determines if an action is allowed.
type Limiter interface {
	// Allow checks if key is allowed to perform one more operation within
	// limit/period. period is the window length for window-based
	// strategies and the time a token bucket takes to refill limit tokens.
	Allow(ctx context.Context, key string, limit int64, period time.Duration) (*Result, error)
}

// InMemLimiter is a simple thread-safe in-memory token bucket. Useful for
// single-instance deployments that don't need the Redis-backed limiter.
type InMemLimiter struct {
	tokens     map[string]float64
	lastUpdate map[string]time.Time
	mu         sync.Mutex
}

// NewInMemLimiter returns a ready-to-use in-memory limiter.
func NewInMemLimiter() *InMemLimiter {
	return &InMemLimiter{
		tokens:     make(map[string]float64),
		lastUpdate: make(map[string]time.Time),
	}
}

func (l *InMemLimiter) Allow(ctx context.Context, key string, limit int64, period time.Duration) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rate := float64(limit) / period.Seconds()
	now := time.Now()

	tokens, exists := l.tokens[key]
	if !exists {
		tokens = float64(limit)
	} else {
		elapsed := now.Sub(l.lastUpdate[key]).Seconds()
		tokens += elapsed * rate
		if tokens > float64(limit) {
			tokens = float64(limit)
		}
	}
	l.lastUpdate[key] = now

	if tokens >= 1 {
		l.tokens[key] = tokens - 1
		return &Result{Allowed: true, Remaining: int64(tokens - 1), Reset: period}, nil
	}

	l.tokens[key] = tokens
	return &Result{Allowed: false, Remaining: 0, Reset: period}, nil
}
