// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package expression implements the visibility expression language:
// boolean combinations of label references that gate who can see a
// cell.
//
// The language is deliberately tiny. Labels are bare tokens
// (letters, digits, and _ - : . /) or double-quoted strings with
// backslash escapes; operators are ! (not), & (and), | (or) in that
// precedence order; parentheses group.
//
//	secret & !probationary
//	(finance | audit) & "2026 filings"
//
// Compilation happens once, at cell-write time: [Parse] checks
// syntax, [Compile] additionally resolves every label text to its
// registry ordinal and returns the immutable [Node] tree that the
// tag codec serializes. Scans never see text — they decode the
// ordinal tree and call [Node.Evaluate] against the request's
// effective auth set, which is O(tree size) per cell with no parsing
// and no allocation. That split is what keeps the per-cell read path
// cheap.
package expression
