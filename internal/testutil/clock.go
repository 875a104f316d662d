package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant a TickClock starts at.
var Epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// TickClock is a thread-safe manual clock for tests.
//
// Time only moves when Next is called, so several records can be stamped in
// the same tick on purpose. This is how tests reproduce a store whose
// timestamp resolution is coarser than the operations being timed.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type TickClock struct {
	mu   sync.Mutex
	seq  int64
	tick time.Duration
}

// NewTickClock creates a clock at Epoch that advances by tick per Next call.
// A non-positive tick defaults to one second.
func NewTickClock(tick time.Duration) *TickClock {
	if tick <= 0 {
		tick = time.Second
	}
	return &TickClock{tick: tick}
}

// Now returns the current instant without advancing.
// Implements detect.Clock.
func (c *TickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Epoch.Add(time.Duration(c.seq) * c.tick)
}

// Next advances one tick and returns the new instant.
//
// Monotonic: always returns a later instant, never an earlier one.
func (c *TickClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return Epoch.Add(time.Duration(c.seq) * c.tick)
}

// Ticks returns how many times the clock has advanced.
func (c *TickClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset moves the clock back to Epoch.
func (c *TickClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// FixedClock always reports the same instant.
type FixedClock time.Time

// Now implements detect.Clock.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
