// Package throttle keeps read traffic from amplifying into durable write
// traffic: the engine asks before every expiry-extending "touch", and the
// throttle grants at most one per session reference per window no matter
// how many reads occur. Like the cache, this is pure performance state —
// losing it costs a redundant touch, never a lost update, because the
// store's touch is idempotent.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Entries past this count trigger an opportunistic sweep of idle limiters
// on the next Allow. Sessions that expire without an explicit logout leave
// harmless stale entries behind; the sweep bounds the footprint.
const sweepHighWater = 65536

// Throttle grants at most one durable touch per session reference per
// window. Safe for concurrent use; Allow never blocks. A nil *Throttle and
// a zero window both mean "no throttling": every touch is allowed.
type Throttle struct {
	mu       sync.Mutex
	window   time.Duration
	limiters map[string]*rate.Limiter
}

// New creates a [Throttle] with the given window.
func New(window time.Duration) *Throttle {
	if window <= 0 {
		return nil
	}
	return &Throttle{
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a durable touch for the reference should be issued
// now, and if so records it. The first call for a reference always
// succeeds; subsequent calls succeed at most once per window.
func (t *Throttle) Allow(sessionRef string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	lim, ok := t.limiters[sessionRef]
	if !ok {
		if len(t.limiters) >= sweepHighWater {
			t.sweepLocked()
		}
		lim = rate.NewLimiter(rate.Every(t.window), 1)
		t.limiters[sessionRef] = lim
	}
	t.mu.Unlock()

	return lim.Allow()
}

// Forget drops the bookkeeping for a reference. Called on logout.
func (t *Throttle) Forget(sessionRef string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	delete(t.limiters, sessionRef)
	t.mu.Unlock()
}

// Len reports the number of tracked references.
func (t *Throttle) Len() int {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

// sweepLocked removes limiters that have been idle for at least one full
// window: a fully refilled burst means the next Allow would succeed anyway,
// so dropping the entry changes nothing observable. Caller must hold t.mu.
func (t *Throttle) sweepLocked() {
	for ref, lim := range t.limiters {
		if lim.Tokens() >= 1 {
			delete(t.limiters, ref)
		}
	}
}
