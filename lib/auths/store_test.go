// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auths

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bureau-foundation/visibility/lib/label"
	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/sqlitepool"
)

// testFixture opens a shared pool with both the registry and the
// store on it, and registers a few labels to assign.
type testFixture struct {
	registry *label.Registry
	store    *Store
	ordinals map[string]label.Ordinal
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path: filepath.Join(t.TempDir(), "auths.db"),
	})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	registry, err := label.NewRegistry(ctx, label.RegistryConfig{Pool: pool})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store, err := NewStore(ctx, StoreConfig{Pool: pool})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	fixture := &testFixture{
		registry: registry,
		store:    store,
		ordinals: make(map[string]label.Ordinal),
	}
	for _, text := range []string{"secret", "confidential", "public"} {
		ordinal, _, err := registry.Add(ctx, text)
		if err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
		fixture.ordinals[text] = ordinal
	}
	return fixture
}

func (f *testFixture) set(texts ...string) label.Set {
	s := label.NewSet()
	for _, text := range texts {
		s.Add(f.ordinals[text])
	}
	return s
}

func TestGetNeverAssigned(t *testing.T) {
	f := newFixture(t)

	got, err := f.store.Get(context.Background(), principal.NewUser("nobody"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Get = %v, want empty", got.Ordinals())
	}
}

func TestSetIsAdditive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal.NewUser("alice")

	if err := f.store.Set(ctx, alice, f.set("secret")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.store.Set(ctx, alice, f.set("confidential")); err != nil {
		t.Fatalf("second Set: %v", err)
	}

	got, err := f.store.Get(ctx, alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Len() != 2 || !got.Contains(f.ordinals["secret"]) || !got.Contains(f.ordinals["confidential"]) {
		t.Errorf("Get = %v, want secret+confidential", got.Ordinals())
	}
}

func TestMonotonicLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := principal.NewGroup("testgroup")
	labels := f.set("secret", "confidential")

	if err := f.store.Set(ctx, group, labels); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.store.Clear(ctx, group, labels); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := f.store.Get(ctx, group)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Get after set+clear = %v, want empty", got.Ordinals())
	}
}

func TestClearAbsentOrdinalIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal.NewUser("alice")

	if err := f.store.Set(ctx, alice, f.set("secret")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Clearing a label alice never held must not error or disturb
	// what she does hold.
	if err := f.store.Clear(ctx, alice, f.set("public")); err != nil {
		t.Fatalf("Clear absent: %v", err)
	}

	got, err := f.store.Get(ctx, alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Contains(f.ordinals["secret"]) {
		t.Error("Clear of absent ordinal disturbed held auth")
	}
}

func TestSetRejectsDanglingOrdinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal.NewUser("alice")

	err := f.store.Set(ctx, alice, label.NewSet(999))
	var notFound *label.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Set dangling = %v, want *label.NotFoundError", err)
	}

	got, err := f.store.Get(ctx, alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Len() != 0 {
		t.Error("failed mutation left state behind")
	}
}

func TestUserAndGroupKeysIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.store.Set(ctx, principal.NewUser("ops"), f.set("secret")); err != nil {
		t.Fatalf("Set user: %v", err)
	}
	got, err := f.store.Get(ctx, principal.NewGroup("ops"))
	if err != nil {
		t.Fatalf("Get group: %v", err)
	}
	if got.Len() != 0 {
		t.Error("group key observed user assignment")
	}
}

func TestConcurrentMutationDifferentPrincipals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := principal.NewUser(fmt.Sprintf("user-%d", i))
			errs[i] = f.store.Set(ctx, p, f.set("secret", "public"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}
	for i := 0; i < writers; i++ {
		got, err := f.store.Get(ctx, principal.NewUser(fmt.Sprintf("user-%d", i)))
		if err != nil {
			t.Fatalf("Get user-%d: %v", i, err)
		}
		if got.Len() != 2 {
			t.Errorf("user-%d has %d auths, want 2", i, got.Len())
		}
	}
}
