package engine

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Conn is one shard's embedded SQLite connection. Not safe for
// concurrent use; callers (internal/worker) serialize all access to a
// given Conn through a single goroutine.
type Conn struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database file at path,
// creating its parent directory recursively if it does not already
// exist. path may be ":memory:" for an ephemeral shard, used by tests,
// in which case no directory is created.
func Open(path string) (*Conn, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, sqlerr.Engine(err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, sqlerr.Engine(err)
	}
	db.SetMaxOpenConns(1)
	return &Conn{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Conn) Close() error {
	if err := c.db.Close(); err != nil {
		return sqlerr.Engine(err)
	}
	return nil
}

// preparer is satisfied by both *sql.DB and *sql.Tx, letting Prepare be
// shared between the connection-level and transaction-level cases.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Prepare compiles query against the connection directly (outside any
// transaction).
func (c *Conn) Prepare(ctx context.Context, query string) (*Stmt, error) {
	return prepare(ctx, c.db, query)
}

// Begin starts a transaction. Statements prepared against the returned
// Tx participate in it; the shard worker holds at most one open Tx at a
// time, matching the state machine's single in-flight transaction rule.
func (c *Conn) Begin(ctx context.Context) (*Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, sqlerr.Engine(err)
	}
	return &Tx{tx: tx}, nil
}

func prepare(ctx context.Context, p preparer, query string) (*Stmt, error) {
	s, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, sqlerr.Engine(err)
	}
	return &Stmt{stmt: s}, nil
}

// Tx wraps a single SQLite transaction.
type Tx struct {
	tx *sql.Tx
}

// Prepare compiles query against the transaction.
func (t *Tx) Prepare(ctx context.Context, query string) (*Stmt, error) {
	return prepare(ctx, t.tx, query)
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return sqlerr.Engine(err)
	}
	return nil
}

// Rollback aborts the transaction. Calling Rollback on a transaction that
// is already committed or rolled back returns nil: database/sql's
// ErrTxDone is not reported.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return sqlerr.Engine(err)
	}
	return nil
}

// Stmt is a prepared statement bound and (re-)executed any number of
// times before being closed.
type Stmt struct {
	stmt *sql.Stmt
}

// Close releases the prepared statement.
func (s *Stmt) Close() error {
	if err := s.stmt.Close(); err != nil {
		return sqlerr.Engine(err)
	}
	return nil
}

// BindExec binds params and executes the statement once, returning the
// driver's LastInsertId: the connection's most recently inserted rowid,
// which describes this statement only when it was an INSERT into a rowid
// table.
func (s *Stmt) BindExec(ctx context.Context, params []sqltypes.SqlParam) (int64, error) {
	res, err := s.stmt.ExecContext(ctx, toArgs(params)...)
	if err != nil {
		return 0, sqlerr.Engine(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, sqlerr.Engine(err)
	}
	return id, nil
}

// BindQuery binds params and begins streaming a result set.
func (s *Stmt) BindQuery(ctx context.Context, params []sqltypes.SqlParam) (*Rows, error) {
	rows, err := s.stmt.QueryContext(ctx, toArgs(params)...)
	if err != nil {
		return nil, sqlerr.Engine(err)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, sqlerr.Engine(err)
	}
	return &Rows{rows: rows, colTypes: colTypes}, nil
}

func toArgs(params []sqltypes.SqlParam) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}
