// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package auths implements the auth assignment store: the mapping
// from principal (user or group) to the set of label ordinals that
// principal is authorized to see.
//
// The store knows nothing about group inheritance or superusers —
// those are the resolver's business (lib/visibility). It offers
// exactly the three operations the administrative surface needs:
// [Store.Set] (additive union), [Store.Clear] (removal, absent
// ordinals ignored), and [Store.Get] (current set, empty if never
// assigned). Each mutation is one IMMEDIATE transaction, which gives
// per-principal atomicity without any cross-principal locking.
package auths
