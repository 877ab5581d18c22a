// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bureau-foundation/visibility/lib/label"
)

// Kind identifies a node in a compiled visibility expression. Values
// start at 1 so that a zero kind in a decoded tag is detectable
// corruption rather than a plausible node.
type Kind int

const (
	// KindLabel is a leaf referencing a single label ordinal.
	KindLabel Kind = iota + 1

	// KindAnd is true iff all of its children (two or more) are true.
	KindAnd

	// KindOr is true iff any of its children (two or more) is true.
	KindOr

	// KindNot inverts its single child.
	KindNot
)

// String returns the node kind name.
func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one node of a compiled visibility expression. Labels are
// referenced only by ordinal — the compiler resolved every text
// before the node was built, so later registry growth cannot change
// what a stored expression means.
//
// A Node is immutable once compiled. Callers must not modify it.
type Node struct {
	// Kind is the node kind.
	Kind Kind

	// Ordinal is the referenced label. Meaningful only for KindLabel.
	Ordinal label.Ordinal

	// Children are the operand nodes: two or more for KindAnd and
	// KindOr, exactly one for KindNot, none for KindLabel.
	Children []*Node
}

// Validate checks the structural invariants of the tree rooted at n:
// known kinds, child counts per kind, non-zero ordinals on leaves.
// A compiled expression always validates; Validate exists for the tag
// decoder, which must treat stored bytes as hostile.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("expression: nil node")
	}
	switch n.Kind {
	case KindLabel:
		if n.Ordinal == 0 {
			return fmt.Errorf("expression: label node with zero ordinal")
		}
		if len(n.Children) != 0 {
			return fmt.Errorf("expression: label node with %d children", len(n.Children))
		}
	case KindAnd, KindOr:
		if n.Ordinal != 0 {
			return fmt.Errorf("expression: %s node with ordinal", n.Kind)
		}
		if len(n.Children) < 2 {
			return fmt.Errorf("expression: %s node with %d children, need at least 2", n.Kind, len(n.Children))
		}
	case KindNot:
		if n.Ordinal != 0 {
			return fmt.Errorf("expression: not node with ordinal")
		}
		if len(n.Children) != 1 {
			return fmt.Errorf("expression: not node with %d children, need exactly 1", len(n.Children))
		}
	default:
		return fmt.Errorf("expression: unknown node kind %d", int(n.Kind))
	}
	for _, child := range n.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate reports whether the expression is satisfied by the given
// auth set: a label leaf is true iff its ordinal is in the set, And
// needs all children, Or needs any, Not inverts. O(size of tree); no
// allocation; never consults the registry.
func (n *Node) Evaluate(auths label.Set) bool {
	switch n.Kind {
	case KindLabel:
		return auths.Contains(n.Ordinal)
	case KindAnd:
		for _, child := range n.Children {
			if !child.Evaluate(auths) {
				return false
			}
		}
		return true
	case KindOr:
		for _, child := range n.Children {
			if child.Evaluate(auths) {
				return true
			}
		}
		return false
	case KindNot:
		return !n.Children[0].Evaluate(auths)
	default:
		// Unreachable for validated trees.
		return false
	}
}

// Equal reports whether two expression trees are structurally
// identical, including child order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || n.Ordinal != other.Ordinal || len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the tree in infix form with ordinals in place of
// label texts, for diagnostics and logs.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	switch n.Kind {
	case KindLabel:
		b.WriteString(strconv.FormatUint(uint64(n.Ordinal), 10))
	case KindAnd, KindOr:
		operator := " & "
		if n.Kind == KindOr {
			operator = " | "
		}
		b.WriteByte('(')
		for i, child := range n.Children {
			if i > 0 {
				b.WriteString(operator)
			}
			child.render(b)
		}
		b.WriteByte(')')
	case KindNot:
		b.WriteByte('!')
		n.Children[0].render(b)
	}
}
