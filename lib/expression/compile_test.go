// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/visibility/lib/label"
)

// mapResolver is a registry stand-in for compiler tests.
type mapResolver map[string]label.Ordinal

func (m mapResolver) Resolve(_ context.Context, text string) (label.Ordinal, error) {
	if ordinal, ok := m[text]; ok {
		return ordinal, nil
	}
	return 0, &label.NotFoundError{Text: text}
}

func TestCompileResolvesOrdinals(t *testing.T) {
	resolver := mapResolver{"secret": 1, "audit": 2, "finance": 3}

	node, err := Compile(context.Background(), "secret & (audit | finance)", resolver)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := and(leaf(1), or(leaf(2), leaf(3)))
	if !node.Equal(want) {
		t.Errorf("Compile = %s, want %s", node, want)
	}
	if err := node.Validate(); err != nil {
		t.Errorf("compiled tree invalid: %v", err)
	}
}

func TestCompileUnknownLabelFailsWhole(t *testing.T) {
	resolver := mapResolver{"secret": 1}

	_, err := Compile(context.Background(), "secret & ghost", resolver)
	var notFound *label.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Compile = %v, want *label.NotFoundError", err)
	}
	if notFound.Text != "ghost" {
		t.Errorf("NotFoundError.Text = %q, want %q", notFound.Text, "ghost")
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile(context.Background(), "secret &", mapResolver{"secret": 1})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Compile = %v, want *ParseError", err)
	}
}

func TestCompileAgainstRealSemantics(t *testing.T) {
	// A & B, A | B, and !A evaluated while the authorized set is
	// drained one label at a time.
	resolver := mapResolver{"A": 10, "B": 20}
	ctx := context.Background()

	andNode, err := Compile(ctx, "A & B", resolver)
	if err != nil {
		t.Fatalf("Compile A & B: %v", err)
	}
	orNode, err := Compile(ctx, "A | B", resolver)
	if err != nil {
		t.Fatalf("Compile A | B: %v", err)
	}
	notNode, err := Compile(ctx, "!A", resolver)
	if err != nil {
		t.Fatalf("Compile !A: %v", err)
	}

	both := label.NewSet(10, 20)
	onlyA := label.NewSet(10)
	neither := label.NewSet()

	if !andNode.Evaluate(both) {
		t.Error("A & B false with both")
	}
	if andNode.Evaluate(onlyA) {
		t.Error("A & B true without B")
	}
	if !orNode.Evaluate(both) || !orNode.Evaluate(onlyA) {
		t.Error("A | B false while A held")
	}
	if orNode.Evaluate(neither) {
		t.Error("A | B true with neither")
	}
	if notNode.Evaluate(onlyA) {
		t.Error("!A true with A present")
	}
	if !notNode.Evaluate(neither) {
		t.Error("!A false with A absent")
	}
}
