// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports malformed expression text. Position is the byte
// offset of the offending token in the input.
type ParseError struct {
	// Position is the byte offset where the problem was detected.
	Position int

	// Message describes the problem.
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expression: %s at position %d", e.Message, e.Position)
}

type tokenKind int

const (
	tokenLabel tokenKind = iota
	tokenAnd
	tokenOr
	tokenNot
	tokenLeftParen
	tokenRightParen
	tokenEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokenLabel:
		return "label"
	case tokenAnd:
		return `"&"`
	case tokenOr:
		return `"|"`
	case tokenNot:
		return `"!"`
	case tokenLeftParen:
		return `"("`
	case tokenRightParen:
		return `")"`
	case tokenEOF:
		return "end of expression"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string // Label text (unescaped) for tokenLabel.
	pos  int    // Byte offset of the token start.
}

// isBareLabelRune reports whether r may appear in an unquoted label
// token. Anything else must be written as a quoted label.
func isBareLabelRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '-', ':', '.', '/':
		return true
	}
	return false
}

// tokenize splits expression text into tokens. Quoted labels use
// double quotes with `\"` and `\\` escapes; whitespace separates
// tokens and is otherwise ignored.
func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			return nil, &ParseError{Position: i, Message: "invalid UTF-8"}
		case unicode.IsSpace(r):
			i += size
		case r == '&':
			tokens = append(tokens, token{kind: tokenAnd, pos: i})
			i++
		case r == '|':
			tokens = append(tokens, token{kind: tokenOr, pos: i})
			i++
		case r == '!':
			tokens = append(tokens, token{kind: tokenNot, pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenLeftParen, pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRightParen, pos: i})
			i++
		case r == '"':
			text, next, err := scanQuoted(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenLabel, text: text, pos: i})
			i = next
		case isBareLabelRune(r):
			start := i
			for i < len(input) {
				r, size := utf8.DecodeRuneInString(input[i:])
				if !isBareLabelRune(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokenLabel, text: input[start:i], pos: start})
		default:
			return nil, &ParseError{Position: i, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

// scanQuoted scans a double-quoted label starting at the opening
// quote. Returns the unescaped text and the offset just past the
// closing quote.
func scanQuoted(input string, start int) (string, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			return "", 0, &ParseError{Position: i, Message: "invalid UTF-8 in quoted label"}
		case r == '"':
			if b.Len() == 0 {
				return "", 0, &ParseError{Position: start, Message: "empty quoted label"}
			}
			return b.String(), i + 1, nil
		case r == '\\':
			if i+1 >= len(input) {
				return "", 0, &ParseError{Position: i, Message: "dangling escape in quoted label"}
			}
			next := input[i+1]
			if next != '"' && next != '\\' {
				return "", 0, &ParseError{Position: i, Message: fmt.Sprintf(`unsupported escape \%c`, next)}
			}
			b.WriteByte(next)
			i += 2
		default:
			b.WriteRune(r)
			i += size
		}
	}
	return "", 0, &ParseError{Position: start, Message: "unterminated quoted label"}
}
