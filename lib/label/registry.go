// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package label

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/visibility/lib/clock"
	"github.com/bureau-foundation/visibility/lib/sqlitepool"
)

// registrySchema creates the label table and the durable allocation
// counter. The counter row is the single serialized point of
// contention for the whole engine; everything else is per-key.
const registrySchema = `
	CREATE TABLE IF NOT EXISTS labels (
		ordinal INTEGER PRIMARY KEY,
		text    TEXT NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS ordinal_counter (
		id   INTEGER PRIMARY KEY CHECK (id = 1),
		next INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO ordinal_counter (id, next) VALUES (1, 1);
`

// RegistryConfig holds the parameters for opening a label registry.
type RegistryConfig struct {
	// Pool is the SQLite connection pool. Required. The registry and
	// the auth store are expected to share a pool (auth rows carry a
	// foreign key into the label table).
	Pool *sqlitepool.Pool

	// Clock drives the allocation backoff. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// AllocationRetries is the compare-and-set attempt ceiling for
	// ordinal allocation. Defaults to 10. Exhaustion surfaces as
	// *AllocationError.
	AllocationRetries int

	// AllocationBackoff is the initial backoff between allocation
	// attempts; it doubles per attempt. Defaults to 5ms.
	AllocationBackoff time.Duration
}

// Registry is the append-only bijection between label text and
// ordinal. Labels are created by Add and never deleted; an ordinal,
// once assigned, refers to the same text forever.
//
// Registry is safe for concurrent use.
type Registry struct {
	pool    *sqlitepool.Pool
	clock   clock.Clock
	logger  *slog.Logger
	retries int
	backoff time.Duration
}

// NewRegistry opens the registry, creating its tables if needed.
func NewRegistry(ctx context.Context, cfg RegistryConfig) (*Registry, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("label: Pool is required")
	}

	r := &Registry{
		pool:    cfg.Pool,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		retries: cfg.AllocationRetries,
		backoff: cfg.AllocationBackoff,
	}
	if r.clock == nil {
		r.clock = clock.Real()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.retries <= 0 {
		r.retries = 10
	}
	if r.backoff <= 0 {
		r.backoff = 5 * time.Millisecond
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("label: open registry: %w", err)
	}
	defer r.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, registrySchema, nil); err != nil {
		return nil, fmt.Errorf("label: create registry schema: %w", err)
	}
	return r, nil
}

// Add registers a label text and returns its ordinal. Idempotent: if
// the text is already registered, the existing ordinal is returned
// with existed=true and the registry is unchanged.
//
// Allocation is a compare-and-set loop against the durable counter,
// retried with exponential backoff. Losing the race more than the
// configured ceiling returns *AllocationError; losing a race on the
// text itself (another writer registered the same label first)
// degrades to the idempotent return.
func (r *Registry) Add(ctx context.Context, text string) (ordinal Ordinal, existed bool, err error) {
	if err := ValidateText(text); err != nil {
		return 0, false, err
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("label: add %q: %w", text, err)
	}
	defer r.pool.Put(conn)

	// Fast path: already registered.
	if ordinal, ok, err := lookupByText(conn, text); err != nil {
		return 0, false, err
	} else if ok {
		return ordinal, true, nil
	}

	ordinal, err = r.allocateOrdinal(ctx, conn)
	if err != nil {
		return 0, false, err
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO labels (ordinal, text) VALUES (?, ?)",
		&sqlitex.ExecOptions{Args: []any{int64(ordinal), text}})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			// Another writer registered the same text between our
			// fast-path check and the insert. The ordinal we
			// allocated is burned — a gap, never a reuse.
			if existing, ok, lookupErr := lookupByText(conn, text); lookupErr == nil && ok {
				return existing, true, nil
			}
		}
		return 0, false, fmt.Errorf("label: insert %q: %w", text, err)
	}

	r.logger.Info("label registered", "text", text, "ordinal", uint64(ordinal))
	return ordinal, false, nil
}

// allocateOrdinal claims the next ordinal from the durable counter.
// The UPDATE is conditional on the value read, so two writers can
// never claim the same ordinal; the loser retries against the new
// value after a backoff.
func (r *Registry) allocateOrdinal(ctx context.Context, conn *sqlite.Conn) (Ordinal, error) {
	backoff := r.backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("label: allocate ordinal: %w", err)
		}

		var current int64
		var found bool
		err := sqlitex.Execute(conn,
			"SELECT next FROM ordinal_counter WHERE id = 1",
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				current = stmt.ColumnInt64(0)
				found = true
				return nil
			}})
		if err != nil {
			return 0, fmt.Errorf("label: read ordinal counter: %w", err)
		}
		if !found {
			return 0, fmt.Errorf("label: ordinal counter row missing")
		}

		err = sqlitex.Execute(conn,
			"UPDATE ordinal_counter SET next = next + 1 WHERE id = 1 AND next = ?",
			&sqlitex.ExecOptions{Args: []any{current}})
		if err != nil {
			return 0, fmt.Errorf("label: advance ordinal counter: %w", err)
		}
		if conn.Changes() == 1 {
			return Ordinal(current), nil
		}

		// Lost the compare-and-set. Someone else allocated this
		// ordinal; back off and retry against the new counter value.
		if attempt >= r.retries {
			r.logger.Error("ordinal allocation gave up", "attempts", attempt)
			return 0, &AllocationError{Attempts: attempt}
		}
		r.logger.Debug("ordinal allocation contended",
			"attempt", attempt,
			"backoff", backoff,
		)
		r.clock.Sleep(backoff)
		backoff *= 2
	}
}

// Resolve returns the ordinal for a registered label text, or
// *NotFoundError.
func (r *Registry) Resolve(ctx context.Context, text string) (Ordinal, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("label: resolve %q: %w", text, err)
	}
	defer r.pool.Put(conn)

	ordinal, ok, err := lookupByText(conn, text)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &NotFoundError{Text: text}
	}
	return ordinal, nil
}

// Lookup returns the text for a registered ordinal, or
// *NotFoundError. Used for diagnostics and for rendering stored auth
// sets back into label texts.
func (r *Registry) Lookup(ctx context.Context, ordinal Ordinal) (string, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("label: lookup ordinal %d: %w", ordinal, err)
	}
	defer r.pool.Put(conn)

	var text string
	var found bool
	err = sqlitex.Execute(conn,
		"SELECT text FROM labels WHERE ordinal = ?",
		&sqlitex.ExecOptions{
			Args: []any{int64(ordinal)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				text = stmt.ColumnText(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("label: lookup ordinal %d: %w", ordinal, err)
	}
	if !found {
		return "", &NotFoundError{Ordinal: ordinal}
	}
	return text, nil
}

// Texts renders a set of ordinals as lexically sorted label texts.
// Ordinals unknown to the registry fail the whole call; stored auth
// sets only reference registered labels, so an unknown ordinal here
// means storage damage worth surfacing, not skipping.
func (r *Registry) Texts(ctx context.Context, set Set) ([]string, error) {
	texts := make([]string, 0, set.Len())
	for _, ordinal := range set.Ordinals() {
		text, err := r.Lookup(ctx, ordinal)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	sort.Strings(texts)
	return texts, nil
}

func lookupByText(conn *sqlite.Conn, text string) (Ordinal, bool, error) {
	var ordinal Ordinal
	var found bool
	err := sqlitex.Execute(conn,
		"SELECT ordinal FROM labels WHERE text = ?",
		&sqlitex.ExecOptions{
			Args: []any{text},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ordinal = Ordinal(stmt.ColumnInt64(0))
				found = true
				return nil
			},
		})
	if err != nil {
		return 0, false, fmt.Errorf("label: lookup %q: %w", text, err)
	}
	return ordinal, found, nil
}
