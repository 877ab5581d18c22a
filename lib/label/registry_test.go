// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package label

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/visibility/lib/clock"
	"github.com/bureau-foundation/visibility/lib/sqlitepool"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path: filepath.Join(t.TempDir(), "labels.db"),
	})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	registry, err := NewRegistry(context.Background(), RegistryConfig{
		Pool:  pool,
		Clock: clock.Fake(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func TestAddAssignsMonotonicOrdinals(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	for i, text := range []string{"secret", "confidential", "public"} {
		ordinal, existed, err := registry.Add(ctx, text)
		if err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
		if existed {
			t.Errorf("Add(%q) reported existing on first registration", text)
		}
		if want := Ordinal(i + 1); ordinal != want {
			t.Errorf("Add(%q) = ordinal %d, want %d", text, ordinal, want)
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	first, _, err := registry.Add(ctx, "secret")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, existed, err := registry.Add(ctx, "secret")
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if !existed {
		t.Error("second Add not reported as existing")
	}
	if second != first {
		t.Errorf("second Add = ordinal %d, want %d", second, first)
	}

	// The registry gained exactly one entry: the next ordinal is 2.
	next, _, err := registry.Add(ctx, "other")
	if err != nil {
		t.Fatalf("Add other: %v", err)
	}
	if next != 2 {
		t.Errorf("next ordinal = %d, want 2", next)
	}
}

func TestResolveAndLookup(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	ordinal, _, err := registry.Add(ctx, "secret")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	resolved, err := registry.Resolve(ctx, "secret")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != ordinal {
		t.Errorf("Resolve = %d, want %d", resolved, ordinal)
	}

	text, err := registry.Lookup(ctx, ordinal)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if text != "secret" {
		t.Errorf("Lookup = %q, want %q", text, "secret")
	}
}

func TestResolveUnknown(t *testing.T) {
	registry := testRegistry(t)

	_, err := registry.Resolve(context.Background(), "ghost")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve unknown = %v, want *NotFoundError", err)
	}
	if notFound.Text != "ghost" {
		t.Errorf("NotFoundError.Text = %q, want %q", notFound.Text, "ghost")
	}
}

func TestLookupUnknownOrdinal(t *testing.T) {
	registry := testRegistry(t)

	_, err := registry.Lookup(context.Background(), 42)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Lookup unknown = %v, want *NotFoundError", err)
	}
	if notFound.Ordinal != 42 {
		t.Errorf("NotFoundError.Ordinal = %d, want 42", notFound.Ordinal)
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"secret", true},
		{"top secret", true}, // Spaces allowed, quoted in expressions.
		{"a&b|c", true},      // Operator characters too.
		{"", false},
		{"bad\x00label", false},
		{"bad\nlabel", false},
		{string([]byte{0xff, 0xfe}), false},
	}
	for _, test := range tests {
		err := ValidateText(test.text)
		if test.ok && err != nil {
			t.Errorf("ValidateText(%q): %v", test.text, err)
		}
		if !test.ok && err == nil {
			t.Errorf("ValidateText(%q) accepted invalid text", test.text)
		}
	}
}

func TestTextsSorted(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	set := NewSet()
	for _, text := range []string{"zulu", "alpha", "mike"} {
		ordinal, _, err := registry.Add(ctx, text)
		if err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
		set.Add(ordinal)
	}

	texts, err := registry.Texts(ctx, set)
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	if len(texts) != len(want) {
		t.Fatalf("Texts = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("Texts = %v, want %v", texts, want)
		}
	}
}

func TestConcurrentAddDistinctTexts(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	const writers = 8
	ordinals := make([]Ordinal, writers)
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ordinals[i], _, errs[i] = registry.Add(ctx, fmt.Sprintf("label-%d", i))
		}(i)
	}
	wg.Wait()

	seen := make(map[Ordinal]int)
	for i := 0; i < writers; i++ {
		if errs[i] != nil {
			t.Fatalf("Add %d: %v", i, errs[i])
		}
		if prev, dup := seen[ordinals[i]]; dup {
			t.Fatalf("writers %d and %d both got ordinal %d", prev, i, ordinals[i])
		}
		seen[ordinals[i]] = i
	}
}

func TestAllocationErrorMessage(t *testing.T) {
	err := &AllocationError{Attempts: 10}
	if err.Error() == "" {
		t.Fatal("empty error message")
	}
}
