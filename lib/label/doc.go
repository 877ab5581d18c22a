// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package label implements the visibility label registry: an
// append-only bijection between label text and a compact numeric
// ordinal.
//
// Every other component speaks ordinals. Expressions are compiled to
// ordinal form before they are stored in a cell tag, auth sets are
// stored as ordinals, and the scan evaluator compares ordinals — text
// appears only at the administrative boundary. Because tags are
// immutable and reference labels by ordinal, the registry must never
// move or reuse an ordinal: a reused ordinal would silently rewrite
// the meaning of every tag that mentions it. [Registry.Add] is
// therefore append-only and idempotent, and allocation gaps (from
// lost races) are permanent.
//
// Allocation is modeled as an arena: the ordinal is an index handed
// out by a durable counter, claimed with a compare-and-set UPDATE and
// a bounded, backed-off retry loop (see [RegistryConfig]). This is
// the one serialized point in the engine; auth mutations and reads
// are per-key and uncoordinated.
package label
