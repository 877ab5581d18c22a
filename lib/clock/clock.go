// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the two time operations the engine performs: reading
// the current time (resolver cache expiry) and sleeping (ordinal
// allocation backoff). Production code injects Real(); tests inject
// Fake() so that backoff and expiry are deterministic.
//
// Any function that would call time.Now or time.Sleep directly should
// instead accept a Clock, or be a method on a struct carrying one.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses the calling goroutine for at least duration d.
	// A non-positive d returns immediately.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}
