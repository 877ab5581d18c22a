// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/visibility/lib/principal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visibility.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/visibility/labels.db
  pool_size: 8
superusers:
  - root
  - "@supergroup"
membership:
  supergroup:
    - admin
  testgroup:
    - alice
    - bob
allocation:
  retries: 20
  backoff: 10ms
resolver_cache_ttl: 30s
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Database.Path != "/var/lib/visibility/labels.db" {
		t.Errorf("Path = %q", cfg.Database.Path)
	}
	if cfg.Database.PoolSize != 8 {
		t.Errorf("PoolSize = %d, want 8", cfg.Database.PoolSize)
	}
	if cfg.Allocation.Retries != 20 {
		t.Errorf("Retries = %d, want 20", cfg.Allocation.Retries)
	}

	backoff, err := cfg.AllocationBackoff()
	if err != nil {
		t.Fatalf("AllocationBackoff: %v", err)
	}
	if backoff != 10*time.Millisecond {
		t.Errorf("backoff = %v, want 10ms", backoff)
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		t.Fatalf("CacheTTL: %v", err)
	}
	if ttl != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", ttl)
	}

	supers, err := cfg.SuperuserPrincipals()
	if err != nil {
		t.Fatalf("SuperuserPrincipals: %v", err)
	}
	want := []principal.Principal{principal.NewUser("root"), principal.NewGroup("supergroup")}
	if len(supers) != 2 || supers[0] != want[0] || supers[1] != want[1] {
		t.Errorf("superusers = %v, want %v", supers, want)
	}
}

func TestStaticMembershipInversion(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "x.db"
	cfg.Membership = map[string][]string{
		"testgroup":  {"alice", "bob"},
		"supergroup": {"alice"},
	}

	membership, err := cfg.StaticMembership()
	if err != nil {
		t.Fatalf("StaticMembership: %v", err)
	}
	aliceGroups := membership[principal.NewUser("alice")]
	if len(aliceGroups) != 2 {
		t.Errorf("alice groups = %v, want both groups", aliceGroups)
	}
	bobGroups := membership[principal.NewUser("bob")]
	if len(bobGroups) != 1 || bobGroups[0] != principal.NewGroup("testgroup") {
		t.Errorf("bob groups = %v, want [@testgroup]", bobGroups)
	}
}

func TestDefaultsApplied(t *testing.T) {
	path := writeConfig(t, "database:\n  path: only.db\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Database.PoolSize != 4 {
		t.Errorf("PoolSize = %d, want default 4", cfg.Database.PoolSize)
	}
	ttl, err := cfg.CacheTTL()
	if err != nil || ttl != 0 {
		t.Errorf("CacheTTL = %v, %v; want 0 (disabled)", ttl, err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
	}{
		{"missing path", func(c *Config) { c.Database.Path = "" }},
		{"negative pool", func(c *Config) { c.Database.PoolSize = -1 }},
		{"bad superuser", func(c *Config) { c.Superusers = []string{"has space"} }},
		{"bad member", func(c *Config) { c.Membership = map[string][]string{"g": {"bad\x00"}} }},
		{"negative retries", func(c *Config) { c.Allocation.Retries = -1 }},
		{"bad backoff", func(c *Config) { c.Allocation.Backoff = "soon" }},
		{"negative ttl", func(c *Config) { c.ResolverCacheTTL = "-1s" }},
	}
	for _, test := range tests {
		cfg := Default()
		cfg.Database.Path = "labels.db"
		test.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted invalid config", test.name)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile on a missing file succeeded")
	}
}
