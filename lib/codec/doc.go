// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the engine's standard CBOR configuration.
//
// Cell tags are CBOR (see lib/tag) and must be byte-deterministic: the
// tag codec's round-trip law is stated over bytes, and identical
// expressions must encode identically regardless of which process
// wrote them. [Marshal] therefore uses Core Deterministic Encoding
// (RFC 8949 §4.2). [Unmarshal] is strict — duplicate map keys and
// invalid UTF-8 are decode errors, since every tag this engine reads
// was written by this engine and irregularities indicate corruption.
//
// Consumers import only this package, never fxamacker/cbor directly,
// so the encoding configuration cannot drift between call sites.
package codec
