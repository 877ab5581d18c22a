// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the engine's YAML configuration: database
// location, superusers, static group membership, ordinal allocation
// retry policy, and resolver cache TTL.
//
// The config file is the single source of truth. Environment
// variables never override file values; the only environment input
// is VISIBILITY_CONFIG naming the file itself.
package config
