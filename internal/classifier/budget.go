package classifier

import (
	"sync"
	"time"
)

// Budget gates calls to the paid AI stage. Implementations decide whether a
// call may proceed right now; Allow consumes a slot when it returns true.
//
// The orchestrator takes this as an interface so the process-local limiter
// below can later be swapped for a distributed one without touching call
// sites.
type Budget interface {
	Allow() bool
	// Remaining reports how many calls are left in the current window,
	// for metrics and admin introspection.
	Remaining() int
}

// HourlyBudget is a fixed-window counter with a minimum spacing between
// calls. It is process-local, best-effort state: running more than one
// worker against the same API budget requires an external limiter instead.
type HourlyBudget struct {
	mu          sync.Mutex
	max         int
	minInterval time.Duration

	windowStart time.Time
	used        int
	lastCall    time.Time

	now func() time.Time
}

func NewHourlyBudget(max int, minInterval time.Duration) *HourlyBudget {
	return &HourlyBudget{
		max:         max,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Allow reports whether an AI call may be made now, and if so records it.
func (b *HourlyBudget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= time.Hour {
		b.windowStart = now
		b.used = 0
	}

	if b.used >= b.max {
		return false
	}
	if !b.lastCall.IsZero() && now.Sub(b.lastCall) < b.minInterval {
		return false
	}

	b.used++
	b.lastCall = now
	return true
}

func (b *HourlyBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.windowStart.IsZero() || b.now().Sub(b.windowStart) >= time.Hour {
		return b.max
	}
	if b.used >= b.max {
		return 0
	}
	return b.max - b.used
}
