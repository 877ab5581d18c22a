// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called; Sleep advances the clock itself so
// that retry loops under test complete without real waiting.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing. Now returns a time
// that moves only via Advance or Sleep. Every Sleep duration is
// recorded so tests can assert on backoff schedules.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Sleep records d and advances the fake time by it, returning
// immediately. Negative durations are recorded as zero.
func (c *FakeClock) Sleep(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.sleeps = append(c.sleeps, d)
}

// Sleeps returns a copy of every duration passed to Sleep, in call
// order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
