// Package store implements the durable, transactional container store of
// spec.md §4.1: a repository of data blocks, save frames, loops, and
// packets keyed by normalized names, backed by an embedded SQL engine
// (modernc.org/sqlite) with foreign-key enforcement standing in for the
// hand-rolled referential checks spec.md §9 asks to retire.
//
// Every mutating operation opens a transaction and rolls it back on any
// step failure (spec.md §4.1 "Failure model"), the same shape as the
// teacher project's dbops.go/deployable.go Upload/Drop: BeginTx, a
// deferred best-effort Rollback, ExecContext per step, Commit on success.
package store

import (
	"context"
	"database/sql"
	"sync"

	"github.com/gofrs/uuid"
	_ "modernc.org/sqlite"

	cerrors "github.com/ciftools/linguist/errors"
)

// Store is one open, in-memory, transactional CIF container store. The
// zero value is not usable; construct with Open.
//
// Per spec.md §5 "single connection", the underlying *sql.DB is capped at
// one open connection, so the single-threaded, non-blocking scheduling
// model is enforced by the pool itself rather than by caller discipline
// alone.
type Store struct {
	db         *sql.DB
	generation uuid.UUID

	stmtMu sync.Mutex
	stmts  map[string]*sql.Stmt
}

// Open creates a fresh, empty, in-memory container store. Each call
// returns an independently scoped database (spec.md §6: "held in memory,
// not durable across invocations") and a fresh generation, so handles
// from one Store are never mistakenly accepted by another.
func Open(ctx context.Context) (*Store, error) {
	gen, err := uuid.NewV4()
	if err != nil {
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to mint store generation: %v", err)
	}

	db, err := sql.Open("sqlite", "file:"+gen.String()+"?mode=memory&cache=shared")
	if err != nil {
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to open embedded store: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to enable foreign key enforcement: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to apply schema: %v", err)
	}

	return &Store{db: db, generation: gen, stmts: make(map[string]*sql.Stmt)}, nil
}

// Close releases the store's connection and all cached prepared
// statements.
func (s *Store) Close() error {
	s.stmtMu.Lock()
	for _, stmt := range s.stmts {
		_ = stmt.Close()
	}
	s.stmts = nil
	s.stmtMu.Unlock()
	return s.db.Close()
}

// Generation returns the store's handle-validation generation, exported
// for tests that need to construct a deliberately stale handle.
func (s *Store) Generation() uuid.UUID { return s.generation }

// prepared returns a cached *sql.Stmt for tag, preparing and caching it
// against query on first use (spec.md §9 design note: "a small registry
// mapping statement tags to lazily-prepared statements"). Called directly
// for queries run outside a transaction; preparedTx wraps it for queries
// that must run inside one.
func (s *Store) prepared(ctx context.Context, tag, query string) (*sql.Stmt, error) {
	s.stmtMu.Lock()
	defer s.stmtMu.Unlock()
	if stmt, ok := s.stmts[tag]; ok {
		return stmt, nil
	}
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to prepare statement %q: %v", tag, err)
	}
	s.stmts[tag] = stmt
	return stmt, nil
}

// preparedTx returns tag's cached statement bound to tx, so a query that
// must participate in the caller's transaction still reuses the one
// prepared plan rather than re-preparing per call.
func (s *Store) preparedTx(ctx context.Context, tx *sql.Tx, tag, query string) (*sql.Stmt, error) {
	stmt, err := s.prepared(ctx, tag, query)
	if err != nil {
		return nil, err
	}
	return tx.StmtContext(ctx, stmt), nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back (best-effort) on any error fn returns or on a panic, which is
// re-panicked after rollback.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, beginErr := s.db.BeginTx(ctx, nil)
	if beginErr != nil {
		return cerrors.New(cerrors.EnvironmentError, "failed to begin transaction: %v", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return cerrors.New(cerrors.EnvironmentError, "failed to commit transaction: %v", err)
	}
	return nil
}

func (s *Store) checkContainer(h ContainerHandle) error {
	if !h.valid(s.generation) {
		return cerrors.New(cerrors.InvalidHandle, "container handle is stale or from a different store")
	}
	return nil
}

func (s *Store) checkLoop(h LoopHandle) error {
	if !h.valid(s.generation) {
		return cerrors.New(cerrors.InvalidHandle, "loop handle is stale or from a different store")
	}
	return nil
}
