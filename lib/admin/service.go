// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/visibility/lib/auths"
	"github.com/bureau-foundation/visibility/lib/label"
	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/visibility"
)

// ErrNotAuthorized rejects a call whose caller lacks the right to
// make it. The whole call fails; nothing is partially applied.
var ErrNotAuthorized = errors.New("admin: not authorized")

// LabelResult is the outcome for one label in a batch operation.
type LabelResult struct {
	// Label is the label text as submitted.
	Label string

	// AlreadyExists is set by AddLabels when the label was already
	// registered. Not an error: the ordinal is stable either way.
	AlreadyExists bool

	// Err is the per-item failure, nil on success.
	Err error
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Registry is the label registry. Required.
	Registry *label.Registry

	// Auths is the auth store. Required.
	Auths *auths.Store

	// Resolver authorizes calls and has its cache invalidated on
	// auth changes. Required.
	Resolver *visibility.Resolver

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Service carries out administrative operations against the label
// registry and auth store. Safe for concurrent use.
type Service struct {
	registry *label.Registry
	auths    *auths.Store
	resolver *visibility.Resolver
	logger   *slog.Logger
}

// NewService validates the configuration and returns a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("admin: config: Registry is required")
	}
	if cfg.Auths == nil {
		return nil, fmt.Errorf("admin: config: Auths is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("admin: config: Resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		registry: cfg.Registry,
		auths:    cfg.Auths,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
	}, nil
}

// AddLabels registers the given label texts. Each label gets its own
// outcome; an invalid text fails only that item. Caller must be a
// superuser.
func (s *Service) AddLabels(ctx context.Context, caller principal.Principal, labels []string) ([]LabelResult, error) {
	if err := s.requireSuperuser(ctx, caller); err != nil {
		return nil, err
	}
	results := make([]LabelResult, len(labels))
	for i, text := range labels {
		results[i].Label = text
		_, existed, err := s.registry.Add(ctx, text)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].AlreadyExists = existed
		if !existed {
			s.logger.Info("label registered", "label", text, "caller", caller.Key())
		}
	}
	return results, nil
}

// SetAuths grants the given labels to target. Labels that do not
// resolve fail their own item; the rest are applied atomically in
// one store mutation. Caller must be a superuser.
func (s *Service) SetAuths(ctx context.Context, caller principal.Principal, labels []string, target principal.Principal) ([]LabelResult, error) {
	if err := s.requireSuperuser(ctx, caller); err != nil {
		return nil, err
	}
	results, ordinals := s.resolveBatch(ctx, labels)
	if ordinals.Len() > 0 {
		if err := s.auths.Set(ctx, target, ordinals); err != nil {
			return nil, err
		}
		s.invalidate(target)
		s.logger.Info("auths granted",
			"target", target.Key(), "count", ordinals.Len(), "caller", caller.Key())
	}
	return results, nil
}

// ClearAuths revokes the given labels from target. Revoking a label
// the target does not hold is a no-op for that item. Caller must be
// a superuser.
func (s *Service) ClearAuths(ctx context.Context, caller principal.Principal, labels []string, target principal.Principal) ([]LabelResult, error) {
	if err := s.requireSuperuser(ctx, caller); err != nil {
		return nil, err
	}
	results, ordinals := s.resolveBatch(ctx, labels)
	if ordinals.Len() > 0 {
		if err := s.auths.Clear(ctx, target, ordinals); err != nil {
			return nil, err
		}
		s.invalidate(target)
		s.logger.Info("auths revoked",
			"target", target.Key(), "count", ordinals.Len(), "caller", caller.Key())
	}
	return results, nil
}

// GetAuths returns target's directly assigned label texts, sorted.
// Group-inherited auths are not included; read the group itself for
// those. Allowed to superusers and to a principal reading its own
// auths.
func (s *Service) GetAuths(ctx context.Context, caller, target principal.Principal) ([]string, error) {
	if caller != target {
		if err := s.requireSuperuser(ctx, caller); err != nil {
			return nil, err
		}
	}
	set, err := s.auths.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.registry.Texts(ctx, set)
}

func (s *Service) requireSuperuser(ctx context.Context, caller principal.Principal) error {
	super, err := s.resolver.IsSuperuser(ctx, caller)
	if err != nil {
		return err
	}
	if !super {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, caller)
	}
	return nil
}

// resolveBatch maps label texts to ordinals, recording a per-item
// outcome and collecting the ordinals that resolved.
func (s *Service) resolveBatch(ctx context.Context, labels []string) ([]LabelResult, label.Set) {
	results := make([]LabelResult, len(labels))
	ordinals := label.NewSet()
	for i, text := range labels {
		results[i].Label = text
		ordinal, err := s.registry.Resolve(ctx, text)
		if err != nil {
			results[i].Err = err
			continue
		}
		ordinals.Add(ordinal)
	}
	return results, ordinals
}

// invalidate drops cached auth sets affected by a mutation. A user's
// change touches only its own entry; a group's change can affect any
// member, so the whole cache goes.
func (s *Service) invalidate(target principal.Principal) {
	if target.Kind == principal.Group {
		s.resolver.Flush()
		return
	}
	s.resolver.Invalidate(target)
}
