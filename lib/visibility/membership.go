// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package visibility

import (
	"context"

	"github.com/bureau-foundation/visibility/lib/principal"
)

// MembershipProvider reports the groups a principal belongs to.
// Group membership lives outside this engine (a directory, a config
// file); the resolver only consumes it. Implementations must be safe
// for concurrent use.
type MembershipProvider interface {
	// GroupsOf returns the groups p is a direct member of. A
	// principal in no groups returns an empty slice, not an error.
	GroupsOf(ctx context.Context, p principal.Principal) ([]principal.Principal, error)
}

// StaticMembership is a fixed member-to-groups mapping, for
// config-driven deployments and tests. The zero value is an empty
// directory. Lookups never fail.
type StaticMembership map[principal.Principal][]principal.Principal

// GroupsOf returns the configured groups for p. Callers must not
// modify the returned slice.
func (m StaticMembership) GroupsOf(_ context.Context, p principal.Principal) ([]principal.Principal, error) {
	return m[p], nil
}
