// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package visibility decides which cells a scan may return.
//
// The Resolver computes a principal's effective authorization set —
// its direct label auths unioned with the auths of every group it
// belongs to — and answers superuser checks. The Scanner is the
// per-request filter built from that set: it decodes each cell's
// visibility tag and evaluates the expression against the set.
//
// Requested-label narrowing only ever shrinks the set. A scan that
// asks for labels the principal does not hold proceeds with the
// subset it does hold; there is no way to widen access through the
// request. Superusers bypass evaluation entirely.
package visibility
