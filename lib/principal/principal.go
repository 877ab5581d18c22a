// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package principal

import (
	"fmt"
	"strings"
)

// Kind distinguishes individual users from groups. The engine never
// interprets a principal beyond its kind: identity and group
// membership are resolved by external providers.
type Kind int

const (
	// User is an individual user principal.
	User Kind = iota

	// Group is a group principal. Auths assigned to a group are
	// inherited by every member at resolve time.
	Group
)

// String returns "user" or "group".
func (k Kind) String() string {
	if k == Group {
		return "group"
	}
	return "user"
}

// GroupMarker is the leading character that marks a group in the wire
// convention used by administrative calls ("@analytics" is the group
// named "analytics"). The marker is part of the transport convention,
// not of the group's name.
const GroupMarker = '@'

// MaxNameLength bounds principal names. Principals are map and
// database keys throughout the engine; the bound keeps hostile input
// from inflating storage.
const MaxNameLength = 256

// Principal identifies a user or group. It is an opaque key into the
// auth store: two principals are the same assignment target iff their
// Kind and Name are equal.
//
// The zero value is not a valid principal; use IsZero to detect it.
type Principal struct {
	Kind Kind
	Name string
}

// NewUser returns a user principal with the given name.
func NewUser(name string) Principal { return Principal{Kind: User, Name: name} }

// NewGroup returns a group principal with the given name.
func NewGroup(name string) Principal { return Principal{Kind: Group, Name: name} }

// Parse converts the wire form of a principal into a Principal: a
// leading '@' denotes a group, anything else a user. Returns an error
// for empty names or a bare "@".
func Parse(s string) (Principal, error) {
	if s == "" {
		return Principal{}, fmt.Errorf("principal: empty")
	}
	if s[0] == GroupMarker {
		name := s[1:]
		if name == "" {
			return Principal{}, fmt.Errorf("principal: group marker with no name")
		}
		p := NewGroup(name)
		return p, p.Validate()
	}
	p := NewUser(s)
	return p, p.Validate()
}

// MustParse is Parse that panics on error. For tests and constants.
func MustParse(s string) Principal {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the wire form: the name, prefixed with '@' for
// groups.
func (p Principal) String() string {
	if p.Kind == Group {
		return string(GroupMarker) + p.Name
	}
	return p.Name
}

// Key returns the form used as a storage key. It is the wire form,
// which is unambiguous because '@' never begins a user name that
// Validate accepts.
func (p Principal) Key() string { return p.String() }

// IsZero reports whether p is the zero value.
func (p Principal) IsZero() bool { return p.Name == "" }

// Validate checks that the principal name is usable as a storage key:
// non-empty, bounded length, no whitespace or control characters, and
// not itself starting with the group marker (which would make the
// wire form ambiguous).
func (p Principal) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("principal: empty name")
	}
	if len(p.Name) > MaxNameLength {
		return fmt.Errorf("principal: name is %d bytes, maximum is %d", len(p.Name), MaxNameLength)
	}
	if p.Name[0] == GroupMarker {
		return fmt.Errorf("principal: name %q starts with %q", p.Name, string(GroupMarker))
	}
	if i := strings.IndexFunc(p.Name, isForbiddenRune); i >= 0 {
		return fmt.Errorf("principal: invalid character at position %d in %q", i, p.Name)
	}
	return nil
}

func isForbiddenRune(r rune) bool {
	return r < 0x20 || r == 0x7f || r == ' '
}
