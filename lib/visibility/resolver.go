// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/visibility/lib/auths"
	"github.com/bureau-foundation/visibility/lib/clock"
	"github.com/bureau-foundation/visibility/lib/label"
	"github.com/bureau-foundation/visibility/lib/principal"
)

// LabelResolver maps a label text to its ordinal. *label.Registry
// implements it.
type LabelResolver interface {
	Resolve(ctx context.Context, text string) (label.Ordinal, error)
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Auths is the auth store. Required.
	Auths *auths.Store

	// Labels resolves requested label texts for scanners. Required.
	Labels LabelResolver

	// Membership reports group memberships. Required; use an empty
	// StaticMembership for deployments without groups.
	Membership MembershipProvider

	// Superusers are the principals (users or groups) exempt from
	// visibility evaluation.
	Superusers []principal.Principal

	// CacheTTL bounds how long a resolved auth set may be served
	// from cache. Zero disables caching: every Resolve hits the
	// store and the membership provider.
	CacheTTL time.Duration

	// Clock drives cache expiry. Defaults to the real clock.
	Clock clock.Clock

	// Logger receives corrupt-tag warnings from scanners. Defaults
	// to a discard logger.
	Logger *slog.Logger
}

// Resolver computes effective authorization sets and builds per-scan
// filters. Safe for concurrent use.
type Resolver struct {
	auths      *auths.Store
	labels     LabelResolver
	membership MembershipProvider
	superusers map[principal.Principal]struct{}
	clock      clock.Clock
	logger     *slog.Logger

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[principal.Principal]cacheEntry
}

type cacheEntry struct {
	set     label.Set
	expires time.Time
}

// NewResolver validates the configuration and returns a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Auths == nil {
		return nil, fmt.Errorf("visibility: config: Auths is required")
	}
	if cfg.Labels == nil {
		return nil, fmt.Errorf("visibility: config: Labels is required")
	}
	if cfg.Membership == nil {
		return nil, fmt.Errorf("visibility: config: Membership is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	superusers := make(map[principal.Principal]struct{}, len(cfg.Superusers))
	for _, p := range cfg.Superusers {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("visibility: config: superuser %q: %w", p, err)
		}
		superusers[p] = struct{}{}
	}
	r := &Resolver{
		auths:      cfg.Auths,
		labels:     cfg.Labels,
		membership: cfg.Membership,
		superusers: superusers,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		cacheTTL:   cfg.CacheTTL,
	}
	if cfg.CacheTTL > 0 {
		r.cache = make(map[principal.Principal]cacheEntry)
	}
	return r, nil
}

// Resolve returns p's effective authorization set: its direct auths
// unioned with the auths of every group it belongs to. The returned
// set is owned by the caller. With caching enabled the result may be
// up to CacheTTL stale.
func (r *Resolver) Resolve(ctx context.Context, p principal.Principal) (label.Set, error) {
	if cached, ok := r.cached(p); ok {
		return cached, nil
	}

	effective, err := r.auths.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	groups, err := r.membership.GroupsOf(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("visibility: groups of %q: %w", p, err)
	}
	for _, group := range groups {
		groupAuths, err := r.auths.Get(ctx, group)
		if err != nil {
			return nil, err
		}
		effective = effective.Union(groupAuths)
	}

	r.store(p, effective)
	return effective, nil
}

// IsSuperuser reports whether p, or any group p belongs to, is a
// configured superuser.
func (r *Resolver) IsSuperuser(ctx context.Context, p principal.Principal) (bool, error) {
	if _, ok := r.superusers[p]; ok {
		return true, nil
	}
	if len(r.superusers) == 0 {
		return false, nil
	}
	groups, err := r.membership.GroupsOf(ctx, p)
	if err != nil {
		return false, fmt.Errorf("visibility: groups of %q: %w", p, err)
	}
	for _, group := range groups {
		if _, ok := r.superusers[group]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops p's cached auth set, if any. Call after changing
// p's auths or memberships when caching is enabled.
func (r *Resolver) Invalidate(p principal.Principal) {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	delete(r.cache, p)
	r.mu.Unlock()
}

// Flush drops every cached auth set.
func (r *Resolver) Flush() {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	r.cache = make(map[principal.Principal]cacheEntry)
	r.mu.Unlock()
}

func (r *Resolver) cached(p principal.Principal) (label.Set, bool) {
	if r.cache == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[p]
	if !ok || r.clock.Now().After(entry.expires) {
		return nil, false
	}
	// Copy out: callers may mutate their set.
	return label.NewSet(entry.set.Ordinals()...), true
}

func (r *Resolver) store(p principal.Principal, set label.Set) {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	r.cache[p] = cacheEntry{
		set:     label.NewSet(set.Ordinals()...),
		expires: r.clock.Now().Add(r.cacheTTL),
	}
	r.mu.Unlock()
}
