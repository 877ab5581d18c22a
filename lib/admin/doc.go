// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package admin is the administrative surface of the visibility
// engine: defining labels, granting and revoking auths, and reading
// a principal's auths back.
//
// Every call names its caller. Mutations require a superuser;
// reading auths is allowed to superusers and to a principal reading
// its own. Batch operations report a per-item outcome and never
// abort the batch on one bad label.
package admin
