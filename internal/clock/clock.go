// Package clock abstracts the source of the current time so that every
// component depending on "now" stays deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current instant
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock returns an injected instant; the instant can be moved forward
// between calls to simulate the passage of time in tests
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a FixedClock pinned to the given instant
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the pinned instant
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the pinned instant
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Ensure both implementations satisfy the Clock interface
var _ Clock = SystemClock{}
var _ Clock = (*FixedClock)(nil)
