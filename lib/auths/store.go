// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auths

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/visibility/lib/label"
	"github.com/bureau-foundation/visibility/lib/principal"
	"github.com/bureau-foundation/visibility/lib/sqlitepool"
)

// storeSchema creates the auth assignment table. One row per
// (principal, ordinal) pair; a principal's auth set is the rows
// sharing its key. The foreign key into the label table enforces the
// no-dangling-ordinal invariant at write time.
const storeSchema = `
	CREATE TABLE IF NOT EXISTS auths (
		principal TEXT    NOT NULL,
		ordinal   INTEGER NOT NULL REFERENCES labels(ordinal),
		PRIMARY KEY (principal, ordinal)
	) WITHOUT ROWID;
`

// StoreConfig holds the parameters for opening an auth store.
type StoreConfig struct {
	// Pool is the SQLite connection pool. Required, and must be the
	// same pool the label registry uses — the auth table's foreign
	// key references the label table.
	Pool *sqlitepool.Pool

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Store maps principals to the set of label ordinals they are
// authorized to see. Mutations to one principal are a single atomic
// read-modify-write; mutations to different principals proceed
// without coordination.
//
// Store is safe for concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// NewStore opens the auth store, creating its table if needed. The
// label registry must have been opened on the same pool first so the
// foreign key target exists.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("auths: Pool is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := cfg.Pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("auths: open store: %w", err)
	}
	defer cfg.Pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, storeSchema, nil); err != nil {
		return nil, fmt.Errorf("auths: create store schema: %w", err)
	}
	return &Store{pool: cfg.Pool, logger: logger}, nil
}

// Set unions ordinals into the principal's auth set. Purely additive:
// ordinals the principal already holds are untouched. An ordinal not
// present in the label registry fails the whole mutation with
// *label.NotFoundError and leaves the set unchanged.
func (s *Store) Set(ctx context.Context, p principal.Principal, ordinals label.Set) (err error) {
	if err := p.Validate(); err != nil {
		return err
	}
	if ordinals.Len() == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("auths: set %s: %w", p, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("auths: set %s: begin: %w", p, err)
	}
	defer endTransaction(&err)

	for _, ordinal := range ordinals.Ordinals() {
		insertErr := sqlitex.Execute(conn,
			"INSERT OR IGNORE INTO auths (principal, ordinal) VALUES (?, ?)",
			&sqlitex.ExecOptions{Args: []any{p.Key(), int64(ordinal)}})
		if insertErr != nil {
			if sqlite.ErrCode(insertErr) == sqlite.ResultConstraintForeignKey {
				err = &label.NotFoundError{Ordinal: ordinal}
				return err
			}
			err = fmt.Errorf("auths: set %s ordinal %d: %w", p, ordinal, insertErr)
			return err
		}
	}

	s.logger.Info("auths set",
		"principal", p.String(),
		"count", ordinals.Len(),
	)
	return nil
}

// Clear removes ordinals from the principal's auth set. Removing an
// ordinal the principal does not hold is a no-op, not an error. When
// the last ordinal is removed the principal simply has no rows; an
// empty set is the same observable state as never-assigned.
func (s *Store) Clear(ctx context.Context, p principal.Principal, ordinals label.Set) (err error) {
	if err := p.Validate(); err != nil {
		return err
	}
	if ordinals.Len() == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("auths: clear %s: %w", p, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("auths: clear %s: begin: %w", p, err)
	}
	defer endTransaction(&err)

	for _, ordinal := range ordinals.Ordinals() {
		deleteErr := sqlitex.Execute(conn,
			"DELETE FROM auths WHERE principal = ? AND ordinal = ?",
			&sqlitex.ExecOptions{Args: []any{p.Key(), int64(ordinal)}})
		if deleteErr != nil {
			err = fmt.Errorf("auths: clear %s ordinal %d: %w", p, ordinal, deleteErr)
			return err
		}
	}

	s.logger.Info("auths cleared",
		"principal", p.String(),
		"count", ordinals.Len(),
	)
	return nil
}

// Get returns the principal's current auth set. A principal that has
// never been assigned returns an empty set. The read is
// snapshot-consistent: it may trail a concurrent mutation but never
// observes one partially applied.
func (s *Store) Get(ctx context.Context, p principal.Principal) (label.Set, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("auths: get %s: %w", p, err)
	}
	defer s.pool.Put(conn)

	set := label.NewSet()
	err = sqlitex.Execute(conn,
		"SELECT ordinal FROM auths WHERE principal = ?",
		&sqlitex.ExecOptions{
			Args: []any{p.Key()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				set.Add(label.Ordinal(stmt.ColumnInt64(0)))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("auths: get %s: %w", p, err)
	}
	return set, nil
}
