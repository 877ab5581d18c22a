// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bureau-foundation/visibility/lib/expression"
	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/tag"
	"github.com/bureau-foundation/visibility/lib/visibility"
)

// Cell is one immutable versioned cell. Tag is the encoded
// visibility expression, empty for an untagged cell. Callers must
// not modify Value or Tag.
type Cell struct {
	Row     string
	Column  string
	Version uint64
	Value   []byte
	Tag     []byte
}

// Config configures a Table.
type Config struct {
	// Labels resolves label texts when compiling write-time
	// visibility expressions. Required.
	Labels visibility.LabelResolver

	// Resolver builds the per-scan filters. Required.
	Resolver *visibility.Resolver

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Table is an in-memory versioned cell store standing in for an
// external storage engine, with visibility enforcement on scan.
// Safe for concurrent use.
type Table struct {
	labels   visibility.LabelResolver
	resolver *visibility.Resolver
	logger   *slog.Logger

	mu      sync.RWMutex
	cells   []Cell
	version uint64
}

// New validates the configuration and returns an empty Table.
func New(cfg Config) (*Table, error) {
	if cfg.Labels == nil {
		return nil, fmt.Errorf("table: config: Labels is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("table: config: Resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Table{
		labels:   cfg.Labels,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
	}, nil
}

// Put writes a new cell version. A non-empty visibility expression
// is compiled and encoded at write time: a syntax error or unknown
// label rejects this write and nothing is stored. Existing versions
// are never modified.
func (t *Table) Put(ctx context.Context, row, column string, value []byte, visibilityExpr string) error {
	if row == "" {
		return fmt.Errorf("table: put: empty row key")
	}
	var encoded []byte
	if visibilityExpr != "" {
		node, err := expression.Compile(ctx, visibilityExpr, t.labels)
		if err != nil {
			return fmt.Errorf("table: put %s/%s: %w", row, column, err)
		}
		encoded, err = tag.Encode(node)
		if err != nil {
			return fmt.Errorf("table: put %s/%s: %w", row, column, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	t.cells = append(t.cells, Cell{
		Row:     row,
		Column:  column,
		Version: t.version,
		Value:   append([]byte(nil), value...),
		Tag:     encoded,
	})
	return nil
}

// Scan returns the cells visible to p, ordered by row, column, then
// newest version first. Requested label texts narrow the scan the
// way visibility.Resolver.NewScanner describes. Cells with corrupt
// tags are excluded, never surfaced as errors.
func (t *Table) Scan(ctx context.Context, p principal.Principal, requested ...string) ([]Cell, error) {
	scanner, err := t.resolver.NewScanner(ctx, p, requested...)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	snapshot := make([]Cell, len(t.cells))
	copy(snapshot, t.cells)
	t.mu.RUnlock()

	visible := snapshot[:0]
	for _, cell := range snapshot {
		if scanner.Visible(cell.Tag) {
			visible = append(visible, cell)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Version > b.Version
	})
	return visible, nil
}

// Rows returns the distinct row keys visible to p, sorted.
func (t *Table) Rows(ctx context.Context, p principal.Principal, requested ...string) ([]string, error) {
	cells, err := t.Scan(ctx, p, requested...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var rows []string
	for _, cell := range cells {
		if _, ok := seen[cell.Row]; !ok {
			seen[cell.Row] = struct{}{}
			rows = append(rows, cell.Row)
		}
	}
	sort.Strings(rows)
	return rows, nil
}

// Len reports the total number of stored cell versions, regardless
// of visibility.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cells)
}
