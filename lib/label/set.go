// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package label

import "sort"

// Set is a set of label ordinals. The nil map is a valid empty set
// for reads; mutating methods require a set made with NewSet.
type Set map[Ordinal]struct{}

// NewSet returns a set containing the given ordinals.
func NewSet(ordinals ...Ordinal) Set {
	s := make(Set, len(ordinals))
	for _, o := range ordinals {
		s[o] = struct{}{}
	}
	return s
}

// Contains reports whether o is in the set.
func (s Set) Contains(o Ordinal) bool {
	_, ok := s[o]
	return ok
}

// Add inserts o.
func (s Set) Add(o Ordinal) { s[o] = struct{}{} }

// Remove deletes o if present.
func (s Set) Remove(o Ordinal) { delete(s, o) }

// Len returns the number of ordinals in the set.
func (s Set) Len() int { return len(s) }

// Union returns a new set with every ordinal in s or other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for o := range s {
		out[o] = struct{}{}
	}
	for o := range other {
		out[o] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the ordinals present in both s and
// other.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for o := range small {
		if _, ok := large[o]; ok {
			out[o] = struct{}{}
		}
	}
	return out
}

// Ordinals returns the set's members in ascending order.
func (s Set) Ordinals() []Ordinal {
	out := make([]Ordinal, 0, len(s))
	for o := range s {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
