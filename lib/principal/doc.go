// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package principal models the identities that hold label
// authorizations: individual users and groups.
//
// The engine treats a principal purely as an opaque key into the auth
// store. Who a user is, and which groups they belong to, are resolved
// by external providers (see lib/visibility's MembershipProvider).
// This package only fixes the naming convention shared with those
// providers: on the administrative wire, a leading '@' marks a group,
// so "alice" is a user and "@analytics" is a group. [Parse]
// disambiguates once at the boundary; everything past it works with
// the typed [Principal] value.
package principal
