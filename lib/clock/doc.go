// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the visibility engine.
//
// The engine touches the wall clock in exactly two places: the ordinal
// allocator sleeps between compare-and-set retries, and the resolver
// cache stamps entries with an expiry time. Both go through the
// [Clock] interface so tests can drive them with [Fake] instead of
// waiting on real timers. [FakeClock.Sleeps] exposes the recorded
// backoff schedule for assertion.
package clock
