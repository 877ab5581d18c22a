// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package label

import (
	"fmt"
	"unicode/utf8"
)

// Ordinal is the compact numeric identifier for a registered label
// text. Ordinals are assigned from 1 upward in registration order and
// are never reclaimed or reused; 0 is never a valid ordinal, so a
// zero value in a decoded tag is detectable corruption.
type Ordinal uint64

// MaxTextLength bounds label texts. Labels appear inside cell tags
// only as ordinals, so the bound costs nothing on the data path; it
// exists to keep the registry's unique index honest against hostile
// administrative input.
const MaxTextLength = 1024

// ValidateText checks that a label text is registrable: non-empty,
// bounded, valid UTF-8, and free of control characters. Everything
// else is allowed — labels with spaces or operator characters are
// written as quoted tokens in visibility expressions.
func ValidateText(text string) error {
	if text == "" {
		return fmt.Errorf("label: empty text")
	}
	if len(text) > MaxTextLength {
		return fmt.Errorf("label: text is %d bytes, maximum is %d", len(text), MaxTextLength)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("label: text is not valid UTF-8")
	}
	for i, r := range text {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("label: control character at position %d", i)
		}
	}
	return nil
}

// NotFoundError reports a reference to a label the registry has never
// seen, by text (expression compilation, auth mutation) or by ordinal
// (diagnostics over stored state).
type NotFoundError struct {
	// Text is the unregistered label text, if the lookup was by text.
	Text string

	// Ordinal is the unknown ordinal, if the lookup was by ordinal.
	Ordinal Ordinal
}

func (e *NotFoundError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("label: %q is not registered", e.Text)
	}
	return fmt.Sprintf("label: ordinal %d is not registered", e.Ordinal)
}

// AllocationError reports that ordinal allocation lost the
// compare-and-set race more times than the configured ceiling. The
// registry state is untouched; the caller may retry the whole
// operation.
type AllocationError struct {
	// Attempts is the number of compare-and-set attempts made.
	Attempts int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("label: ordinal allocation contended after %d attempts, registry unavailable", e.Attempts)
}
