// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	tests := []string{
		"secret",
		"a & b",
		"a | b | c",
		"!a",
		"!!a",
		"a & !b",
		"(a | b) & c",
		"a&b|c&!d",
		`"label with spaces"`,
		`"quote \" and backslash \\"`,
		"  spaced_out  ",
		" a \t& \n b ",
		"x-ray:alpha/two.three_4",
	}
	for _, input := range tests {
		if _, err := Parse(input); err != nil {
			t.Errorf("Parse(%q): %v", input, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		position int
	}{
		{"", 0},
		{"   ", 0},
		{"&", 0},
		{"a &", 3},
		{"a & & b", 4},
		{"(a | b", 6},
		{"a | b)", 5},
		{"a b", 2},
		{"!", 1},
		{"()", 1},
		{`"unterminated`, 0},
		{`""`, 0},
		{`"bad \x escape"`, 5},
		{"a # b", 2},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Parse(%q) = %v, want *ParseError", test.input, err)
			continue
		}
		if parseErr.Position != test.position {
			t.Errorf("Parse(%q) error at position %d, want %d (message: %s)",
				test.input, parseErr.Position, test.position, parseErr.Message)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	// a | b & c parses as a | (b & c): with only b and c authorized,
	// the expression holds; with only a authorized it also holds;
	// with only b it does not.
	tree, err := Parse("a | b & c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tree.root
	if root.kind != KindOr || len(root.children) != 2 {
		t.Fatalf("root = %v with %d children, want or/2", root.kind, len(root.children))
	}
	if root.children[0].kind != KindLabel || root.children[0].text != "a" {
		t.Errorf("first operand = %+v, want label a", root.children[0])
	}
	if root.children[1].kind != KindAnd {
		t.Errorf("second operand = %v, want and", root.children[1].kind)
	}
}

func TestParseNotBindsTightest(t *testing.T) {
	// !a & b is (!a) & b, not !(a & b).
	tree, err := Parse("!a & b")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tree.root.kind != KindAnd {
		t.Fatalf("root = %v, want and", tree.root.kind)
	}
	if tree.root.children[0].kind != KindNot {
		t.Errorf("first operand = %v, want not", tree.root.children[0].kind)
	}
}

func TestParseFlattensChains(t *testing.T) {
	tree, err := Parse("a | b | c | d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tree.root.kind != KindOr || len(tree.root.children) != 4 {
		t.Errorf("root = %v with %d children, want or/4", tree.root.kind, len(tree.root.children))
	}
}

func TestTreeLabels(t *testing.T) {
	tree, err := Parse(`(a | b) & !a & "c d"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	labels := tree.Labels()
	want := []string{"a", "b", "c d"}
	if len(labels) != len(want) {
		t.Fatalf("Labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("Labels = %v, want %v", labels, want)
		}
	}
}

func TestQuotedLabelEscapes(t *testing.T) {
	tree, err := Parse(`"a\"b\\c"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	labels := tree.Labels()
	if len(labels) != 1 || labels[0] != `a"b\c` {
		t.Errorf("Labels = %q, want [a\"b\\c]", labels)
	}
}
