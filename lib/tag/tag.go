// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"fmt"

	"github.com/bureau-foundation/visibility/lib/codec"
	"github.com/bureau-foundation/visibility/lib/expression"
	"github.com/bureau-foundation/visibility/lib/label"
)

// CorruptError reports a stored tag that could not be decoded into a
// valid expression tree. This engine never writes such a tag; seeing
// one means a partial write, format mismatch, or storage damage. The
// scan evaluator recovers by excluding the cell — never by crashing
// the scan, and never by showing the cell.
type CorruptError struct {
	// Reason describes what was wrong.
	Reason string

	// Err is the underlying decode or validation error, if any.
	Err error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tag: corrupt: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("tag: corrupt: %s", e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// wireNode is the serialized shape of an expression node. Single
// letter keys keep tags compact: with deterministic encoding, a
// one-label tag is under ten bytes.
type wireNode struct {
	Kind     int        `cbor:"k"`
	Ordinal  uint64     `cbor:"o,omitempty"`
	Children []wireNode `cbor:"c,omitempty"`
}

// Encode serializes a compiled expression into the byte tag stored
// with a cell. Encoding is deterministic: equal trees produce
// identical bytes. The tree must be valid (Encode is called with
// compiler output; an invalid tree is a programming error surfaced
// as a plain error, not written as a bad tag).
func Encode(node *expression.Node) ([]byte, error) {
	if err := node.Validate(); err != nil {
		return nil, fmt.Errorf("tag: encode: %w", err)
	}
	data, err := codec.Marshal(toWire(node))
	if err != nil {
		return nil, fmt.Errorf("tag: encode: %w", err)
	}
	return data, nil
}

// Decode deserializes a stored tag back into an expression tree.
// Truncated, trailing-garbage, non-CBOR, or structurally invalid
// input returns *CorruptError. For every valid tree x,
// Decode(Encode(x)) equals x.
func Decode(data []byte) (*expression.Node, error) {
	if len(data) == 0 {
		return nil, &CorruptError{Reason: "empty tag"}
	}

	var wire wireNode
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, &CorruptError{Reason: "undecodable CBOR", Err: err}
	}

	node := fromWire(&wire)
	if err := node.Validate(); err != nil {
		return nil, &CorruptError{Reason: "invalid expression structure", Err: err}
	}
	return node, nil
}

func toWire(node *expression.Node) wireNode {
	wire := wireNode{
		Kind:    int(node.Kind),
		Ordinal: uint64(node.Ordinal),
	}
	if len(node.Children) > 0 {
		wire.Children = make([]wireNode, len(node.Children))
		for i, child := range node.Children {
			wire.Children[i] = toWire(child)
		}
	}
	return wire
}

func fromWire(wire *wireNode) *expression.Node {
	node := &expression.Node{
		Kind:    expression.Kind(wire.Kind),
		Ordinal: label.Ordinal(wire.Ordinal),
	}
	if len(wire.Children) > 0 {
		node.Children = make([]*expression.Node, len(wire.Children))
		for i := range wire.Children {
			node.Children[i] = fromWire(&wire.Children[i])
		}
	}
	return node
}
