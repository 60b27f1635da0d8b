package testutil

import (
	"sync"
	"time"
)

// NowAt returns a clock stuck at t.
func NowAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Clock is a manual clock for code that takes a `func() time.Time`. Each
// backup, batch and package name carries a second-resolution stamp, so tests
// advance it to get distinct names without sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a Clock at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// MustParseRFC3339 parses v or panics.
func MustParseRFC3339(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}
