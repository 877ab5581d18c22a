// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool backing the
// label registry and the auth store.
//
// It wraps zombiezen.com/go/sqlite with the pragmas the engine's
// durability model requires. Unlike a cache or telemetry database,
// the registry IS the source of truth — ordinals are append-only and
// never reused, so a committed allocation must survive power loss.
//
// # Pragmas
//
// Every connection in the pool is initialized with:
//
//   - journal_mode=WAL: concurrent readers and a single writer.
//     getAuths/resolve reads never block a setAuths write.
//   - synchronous=FULL: a committed ordinal allocation or auth
//     mutation survives OS crash and power failure. The write rate is
//     administrative (labels and auths change rarely), so the fsync
//     cost is irrelevant.
//   - busy_timeout=5000: wait up to 5 seconds for the write lock
//     instead of surfacing SQLITE_BUSY to every concurrent
//     administrative call.
//   - foreign_keys=ON: auth rows reference label rows. The store
//     rejects dangling ordinals at write time; the FK makes that
//     hold even against bugs in this engine.
//   - temp_store=MEMORY: temporary indexes in memory.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/visibility/labels.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// The package is intentionally thin: standard pragmas, the zombiezen
// types exposed directly, no query builder. The registry and store
// write their own SQL and manage transactions with
// sqlitex.ImmediateTransaction.
package sqlitepool
