// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/visibility"
)

// Config is the engine configuration.
type Config struct {
	// Database configures the SQLite substrate.
	Database DatabaseConfig `yaml:"database"`

	// Superusers are principals exempt from visibility evaluation,
	// in principal syntax ("alice", "@admins").
	Superusers []string `yaml:"superusers"`

	// Membership maps group names (without the "@" marker) to their
	// member principals, for deployments using the static provider.
	Membership map[string][]string `yaml:"membership"`

	// Allocation is the ordinal allocation retry policy.
	Allocation AllocationConfig `yaml:"allocation"`

	// ResolverCacheTTL bounds auth-set cache staleness, as a Go
	// duration string. Empty disables caching.
	ResolverCacheTTL string `yaml:"resolver_cache_ttl"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is the database file. Required.
	Path string `yaml:"path"`

	// PoolSize is the connection pool size. Zero means the pool's
	// default.
	PoolSize int `yaml:"pool_size"`
}

// AllocationConfig is the ordinal allocation retry policy.
type AllocationConfig struct {
	// Retries bounds allocation attempts under contention. Zero
	// means the registry's default.
	Retries int `yaml:"retries"`

	// Backoff is the initial retry backoff as a Go duration string
	// ("5ms"). It doubles per attempt. Empty means the registry's
	// default.
	Backoff string `yaml:"backoff"`
}

// Default returns the default configuration. The database path has
// no default: the file must provide it.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			PoolSize: 4,
		},
	}
}

// Load loads configuration from the file named by the
// VISIBILITY_CONFIG environment variable.
func Load() (*Config, error) {
	path := os.Getenv("VISIBILITY_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("config: VISIBILITY_CONFIG environment variable not set")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path and
// validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems:
// missing database path, unparseable principals or durations,
// negative retry counts.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.PoolSize < 0 {
		return fmt.Errorf("database.pool_size must not be negative")
	}
	if _, err := c.SuperuserPrincipals(); err != nil {
		return err
	}
	if _, err := c.StaticMembership(); err != nil {
		return err
	}
	if c.Allocation.Retries < 0 {
		return fmt.Errorf("allocation.retries must not be negative")
	}
	if _, err := c.AllocationBackoff(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// SuperuserPrincipals parses the configured superuser list.
func (c *Config) SuperuserPrincipals() ([]principal.Principal, error) {
	supers := make([]principal.Principal, 0, len(c.Superusers))
	for _, s := range c.Superusers {
		p, err := principal.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("superusers: %w", err)
		}
		supers = append(supers, p)
	}
	return supers, nil
}

// StaticMembership builds the member-to-groups mapping the resolver
// consumes from the group-to-members form the file uses.
func (c *Config) StaticMembership() (visibility.StaticMembership, error) {
	membership := make(visibility.StaticMembership)
	for groupName, members := range c.Membership {
		group := principal.NewGroup(groupName)
		if err := group.Validate(); err != nil {
			return nil, fmt.Errorf("membership: group %q: %w", groupName, err)
		}
		for _, s := range members {
			member, err := principal.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("membership: group %q: %w", groupName, err)
			}
			membership[member] = append(membership[member], group)
		}
	}
	return membership, nil
}

// AllocationBackoff parses the allocation backoff. Zero means use
// the registry's default.
func (c *Config) AllocationBackoff() (time.Duration, error) {
	return c.parseDuration("allocation.backoff", c.Allocation.Backoff)
}

// CacheTTL parses the resolver cache TTL. Zero disables caching.
func (c *Config) CacheTTL() (time.Duration, error) {
	return c.parseDuration("resolver_cache_ttl", c.ResolverCacheTTL)
}

func (c *Config) parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
