// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package table is an in-memory versioned cell store that exercises
// the full visibility pipeline: expressions compiled and encoded at
// write time, tags decoded and evaluated per scan. It stands in for
// the external storage engine a production deployment would embed
// the engine into.
package table
