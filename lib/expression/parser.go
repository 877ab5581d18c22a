// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
)

// textNode is the pre-resolution AST. Same shape as Node, but leaves
// carry the label text and its source position instead of an ordinal.
type textNode struct {
	kind     Kind
	text     string
	pos      int
	children []*textNode
}

// Tree is a parsed but unresolved visibility expression. It proves
// the text is syntactically valid; Compile additionally resolves
// every label against the registry.
type Tree struct {
	root *textNode
}

// Labels returns the distinct label texts referenced by the tree, in
// first-appearance order.
func (t *Tree) Labels() []string {
	seen := make(map[string]struct{})
	var out []string
	var walk func(n *textNode)
	walk = func(n *textNode) {
		if n.kind == KindLabel {
			if _, ok := seen[n.text]; !ok {
				seen[n.text] = struct{}{}
				out = append(out, n.text)
			}
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
	return out
}

// Parse tokenizes and parses expression text into a Tree. Operator
// precedence, highest to lowest: ! (not), & (and), | (or);
// parentheses group. Malformed syntax returns *ParseError with the
// byte offset of the problem.
func Parse(input string) (*Tree, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if tokens[0].kind == tokenEOF {
		return nil, &ParseError{Position: 0, Message: "empty expression"}
	}

	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if leftover := p.peek(); leftover.kind != tokenEOF {
		return nil, &ParseError{
			Position: leftover.pos,
			Message:  fmt.Sprintf("unexpected %s", leftover.kind),
		}
	}
	return &Tree{root: root}, nil
}

type parser struct {
	tokens []token
	index  int
}

func (p *parser) peek() token { return p.tokens[p.index] }

func (p *parser) next() token {
	t := p.tokens[p.index]
	if t.kind != tokenEOF {
		p.index++
	}
	return t
}

// parseOr handles the lowest-precedence operator. Consecutive |
// operands collect into one n-ary node, so "a | b | c" has a single
// or with three children rather than a lopsided chain.
func (p *parser) parseOr() (*textNode, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*textNode{first}
	for p.peek().kind == tokenOr {
		p.next()
		operand, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, operand)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &textNode{kind: KindOr, pos: first.pos, children: children}, nil
}

func (p *parser) parseAnd() (*textNode, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	children := []*textNode{first}
	for p.peek().kind == tokenAnd {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, operand)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &textNode{kind: KindAnd, pos: first.pos, children: children}, nil
}

func (p *parser) parseNot() (*textNode, error) {
	if p.peek().kind != tokenNot {
		return p.parsePrimary()
	}
	not := p.next()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &textNode{kind: KindNot, pos: not.pos, children: []*textNode{operand}}, nil
}

func (p *parser) parsePrimary() (*textNode, error) {
	t := p.next()
	switch t.kind {
	case tokenLabel:
		return &textNode{kind: KindLabel, text: t.text, pos: t.pos}, nil
	case tokenLeftParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind != tokenRightParen {
			return nil, &ParseError{
				Position: closing.pos,
				Message:  fmt.Sprintf(`expected ")", found %s`, closing.kind),
			}
		}
		return inner, nil
	default:
		return nil, &ParseError{
			Position: t.pos,
			Message:  fmt.Sprintf(`expected label or "(", found %s`, t.kind),
		}
	}
}
