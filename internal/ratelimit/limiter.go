// Package ratelimit implements a fixed-window request counter keyed by client
// identifier. State is process-local; instances behind a load balancer do not
// share budgets unless backed by a shared store.
package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count     int
	resetTime time.Time
}

// Decision is the outcome of one request against the limiter. Limit, Remaining,
// and Reset are surfaced on every response so clients can back off; RetryAfter
// is set only when the request was rejected.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Limiter caps requests per key to max within a fixed window. Expired entries
// across the whole map are purged opportunistically on every call, so cleanup
// cost is bounded and no background timer is needed.
type Limiter struct {
	mu     sync.Mutex
	m      map[string]*entry
	window time.Duration
	max    int
	nowF   func() time.Time
}

// NewLimiter returns a Limiter allowing max requests per key per window.
func NewLimiter(window time.Duration, max int) *Limiter {
	return &Limiter{
		m:      make(map[string]*entry),
		window: window,
		max:    max,
		nowF:   time.Now,
	}
}

// Allow records one request for key and reports whether it fits the budget.
func (l *Limiter) Allow(key string) Decision {
	now := l.nowF()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(now)

	e, ok := l.m[key]
	if !ok || !e.resetTime.After(now) {
		e = &entry{count: 1, resetTime: now.Add(l.window)}
		l.m[key] = e
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - 1, Reset: e.resetTime}
	}

	if e.count < l.max {
		e.count++
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - e.count, Reset: e.resetTime}
	}

	retry := e.resetTime.Sub(now)
	// Round up to whole seconds for the Retry-After contract.
	secs := retry / time.Second
	if retry%time.Second != 0 {
		secs++
	}
	return Decision{Allowed: false, Limit: l.max, Remaining: 0, Reset: e.resetTime, RetryAfter: secs * time.Second}
}

// purge drops every entry whose window has passed. Caller holds l.mu.
func (l *Limiter) purge(now time.Time) {
	for key, e := range l.m {
		if !e.resetTime.After(now) {
			delete(l.m, key)
		}
	}
}
