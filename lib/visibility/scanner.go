// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package visibility

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/visibility/lib/codec"
	"github.com/bureau-foundation/visibility/lib/label"
	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/tag"
)

// Scanner is the per-request visibility filter. Built once per scan,
// it carries the scan's effective authorization set and evaluates
// each cell's tag against it. A Scanner is for a single goroutine;
// build a fresh one per request.
type Scanner struct {
	superuser bool
	auths     label.Set
	logger    *slog.Logger

	// corrupt tags already logged this scan, by content digest
	reported map[[32]byte]struct{}
}

// NewScanner builds the filter for one scan by p. Requested label
// texts, if given, narrow the authorization set: evaluation uses
// only the requested labels the principal actually holds. Requested
// labels p is not authorized for, and labels that do not exist, are
// silently dropped — the request can shrink access, never widen it.
//
// A superuser scan short-circuits: every cell is visible and tags
// are never decoded.
func (r *Resolver) NewScanner(ctx context.Context, p principal.Principal, requested ...string) (*Scanner, error) {
	super, err := r.IsSuperuser(ctx, p)
	if err != nil {
		return nil, err
	}
	if super {
		return &Scanner{superuser: true, logger: r.logger}, nil
	}

	effective, err := r.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(requested) > 0 {
		narrowed := label.NewSet()
		for _, text := range requested {
			ordinal, err := r.labels.Resolve(ctx, text)
			if err != nil {
				var notFound *label.NotFoundError
				if errors.As(err, &notFound) {
					r.logger.Debug("dropping unknown requested label",
						"label", text, "principal", p.Key())
					continue
				}
				return nil, err
			}
			if effective.Contains(ordinal) {
				narrowed.Add(ordinal)
			}
		}
		effective = narrowed
	}
	return &Scanner{auths: effective, logger: r.logger}, nil
}

// Visible reports whether a cell carrying the given tag may be
// returned to this scan. An empty tag means the cell was written
// without a visibility expression and is visible to everyone. A
// corrupt tag excludes the cell: it is logged (once per distinct tag
// per scan, identified by digest) and the scan continues.
func (s *Scanner) Visible(tagBytes []byte) bool {
	if len(tagBytes) == 0 {
		return true
	}
	if s.superuser {
		return true
	}
	node, err := tag.Decode(tagBytes)
	if err != nil {
		s.reportCorrupt(tagBytes, err)
		return false
	}
	return node.Evaluate(s.auths)
}

// Authorizations returns the effective set this scan evaluates
// against, for diagnostics. Nil for a superuser scan.
func (s *Scanner) Authorizations() label.Set { return s.auths }

// Superuser reports whether this scan bypasses evaluation.
func (s *Scanner) Superuser() bool { return s.superuser }

func (s *Scanner) reportCorrupt(tagBytes []byte, err error) {
	digest := blake3.Sum256(tagBytes)
	if s.reported == nil {
		s.reported = make(map[[32]byte]struct{})
	}
	if _, seen := s.reported[digest]; seen {
		return
	}
	s.reported[digest] = struct{}{}
	attrs := []any{
		"digest", hex.EncodeToString(digest[:]),
		"length", len(tagBytes),
		"error", err,
	}
	// A tag that is well-formed CBOR but not a valid expression
	// still has a readable diagnostic form; include it so the
	// operator sees what was actually stored.
	if diag, diagErr := codec.Diagnose(tagBytes); diagErr == nil {
		attrs = append(attrs, "diagnostic", diag)
	}
	s.logger.Warn("corrupt visibility tag, excluding cell", attrs...)
}
