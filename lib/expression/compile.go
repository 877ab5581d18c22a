// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"context"

	"github.com/bureau-foundation/visibility/lib/label"
)

// Resolver maps a label text to its registry ordinal. Satisfied by
// *label.Registry; tests use small fakes.
type Resolver interface {
	Resolve(ctx context.Context, text string) (label.Ordinal, error)
}

// Compile parses expression text and resolves every referenced label
// to its ordinal, producing the immutable form that is encoded into a
// cell tag. Syntax failures return *ParseError; any unregistered
// label fails the whole compilation with the resolver's error
// (*label.NotFoundError for the registry).
//
// Compile is pure apart from resolver lookups: it mutates nothing,
// and the same text compiles to the same tree for as long as the
// referenced labels exist (which, with an append-only registry, is
// forever).
func Compile(ctx context.Context, input string, resolver Resolver) (*Node, error) {
	tree, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return resolve(ctx, tree.root, resolver)
}

func resolve(ctx context.Context, n *textNode, resolver Resolver) (*Node, error) {
	if n.kind == KindLabel {
		ordinal, err := resolver.Resolve(ctx, n.text)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindLabel, Ordinal: ordinal}, nil
	}

	children := make([]*Node, len(n.children))
	for i, child := range n.children {
		resolved, err := resolve(ctx, child, resolver)
		if err != nil {
			return nil, err
		}
		children[i] = resolved
	}
	return &Node{Kind: n.kind, Children: children}, nil
}
