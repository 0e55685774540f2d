package core

import (
	"sync"
	"time"
)

// Clock reports monotonic time elapsed since an arbitrary fixed origin.
type Clock interface {
	Now() time.Duration
}

// WallClock measures elapsed wall time from its creation using the monotonic
// reading carried by time.Time.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a clock at the current instant.
func NewWallClock() *WallClock { return &WallClock{start: time.Now()} }

// Now returns the time elapsed since the clock was created.
func (c *WallClock) Now() time.Duration { return time.Since(c.start) }

// ManualClock is a Clock advanced explicitly, for headless drivers and tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// Now returns the current manual reading.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Set jumps the clock to t if t is not earlier than the current reading.
func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	if t > c.now {
		c.now = t
	}
	c.mu.Unlock()
}
