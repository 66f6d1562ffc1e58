// Package lockout tracks failed authentication attempts per identifier and
// enforces temporary lockouts. State is process-local; a multi-instance
// deployment needs a shared backing store for the guard to stay correct.
package lockout

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	attempts     int
	lockoutUntil time.Time // zero when not locked
}

// Result is the outcome of recording a failed attempt.
type Result struct {
	Locked            bool
	RemainingAttempts int
}

// Guard is the account-lockout state machine. Identifiers are lower-cased
// before use so the same email in different casings shares one entry.
// Failed attempts are recorded for unknown identifiers too; callers return
// the same generic response either way to resist account enumeration.
type Guard struct {
	mu       sync.Mutex
	m        map[string]*entry
	max      int
	duration time.Duration
	nowF     func() time.Time

	sweepEvery time.Duration
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

// NewGuard returns a Guard locking after max failed attempts for the given
// duration, and starts the background sweeper (stopped via Stop). sweepEvery
// <= 0 disables the sweeper.
func NewGuard(max int, duration, sweepEvery time.Duration) *Guard {
	g := &Guard{
		m:          make(map[string]*entry),
		max:        max,
		duration:   duration,
		nowF:       time.Now,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if sweepEvery > 0 {
		go g.sweepLoop()
	} else {
		close(g.done)
	}
	return g
}

// Stop cancels the background sweeper. Safe to call more than once.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
}

// IsLocked reports whether the identifier is currently locked. A lockout
// that has expired is cleared on the spot and reported as unlocked.
func (g *Guard) IsLocked(identifier string) bool {
	key := normalize(identifier)
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.m[key]
	if !ok || e.lockoutUntil.IsZero() {
		return false
	}
	if !e.lockoutUntil.After(g.nowF()) {
		delete(g.m, key)
		return false
	}
	return true
}

// RecordFailure increments the failed-attempt count for the identifier under
// a single lock, so concurrent failures against one account cannot both miss
// the threshold. Reaching the threshold sets the lockout.
func (g *Guard) RecordFailure(identifier string) Result {
	key := normalize(identifier)
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.m[key]
	if !ok {
		e = &entry{}
		g.m[key] = e
	}
	e.attempts++
	if e.attempts >= g.max {
		e.lockoutUntil = g.nowF().Add(g.duration)
		return Result{Locked: true, RemainingAttempts: 0}
	}
	return Result{Locked: false, RemainingAttempts: g.max - e.attempts}
}

// Clear removes all state for the identifier. Called on successful login.
func (g *Guard) Clear(identifier string) {
	key := normalize(identifier)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.m, key)
}

// TimeRemaining returns the remaining lockout duration rounded up to whole
// seconds, and false if the identifier is not locked.
func (g *Guard) TimeRemaining(identifier string) (time.Duration, bool) {
	key := normalize(identifier)
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.m[key]
	if !ok || e.lockoutUntil.IsZero() {
		return 0, false
	}
	rem := e.lockoutUntil.Sub(g.nowF())
	if rem <= 0 {
		return 0, false
	}
	// Round up to whole seconds so clients never retry early.
	secs := rem / time.Second
	if rem%time.Second != 0 {
		secs++
	}
	return secs * time.Second, true
}

func (g *Guard) sweepLoop() {
	defer close(g.done)
	t := time.NewTicker(g.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-t.C:
			g.sweep()
		}
	}
}

// sweep removes entries whose lockout has been expired for longer than one
// attempt window. Sub-threshold entries are kept; their count is bounded by
// the number of distinct identifiers that have ever failed.
func (g *Guard) sweep() {
	now := g.nowF()
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, e := range g.m {
		if e.lockoutUntil.IsZero() {
			continue
		}
		if now.Sub(e.lockoutUntil) > g.duration {
			delete(g.m, key)
		}
	}
}

func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
