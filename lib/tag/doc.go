// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tag serializes compiled visibility expressions into the
// compact byte tags stored alongside cells.
//
// A tag is the deterministic CBOR encoding (lib/codec) of the
// expression tree with one-letter field keys. It is written once, at
// cell-write time, and is immutable for the life of that cell
// version — changing a cell's visibility means writing a new version
// with a new tag, never rewriting an existing one.
//
// [Decode] treats its input as hostile even though only this engine
// writes tags: a partial storage write or format mismatch must
// surface as *[CorruptError], which the scan evaluator maps to "cell
// not visible", not as a panic in the middle of a scan.
package tag
