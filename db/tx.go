package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tx — transaction wrapper
// ─────────────────────────────────────────────────────────────────────────────

// Tx is a thin wrapper around *sql.Tx that mirrors the DB API surface so that
// DAO code can accept either *DB, *Conn or *Tx via the Querier interface.
type Tx struct {
	session
	sqltx *sql.Tx
}

// Raw returns the underlying *sql.Tx for advanced use.
func (t *Tx) Raw() *sql.Tx { return t.sqltx }

// ─────────────────────────────────────────────────────────────────────────────
// ExecTx — scoped transaction
// ─────────────────────────────────────────────────────────────────────────────

// TxOptions allows callers to configure isolation level and read-only flag.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// txBeginner is implemented by *sql.DB and *sql.Conn.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ExecTx starts a transaction, executes fn, and commits on success. Any error
// returned by fn, a failed commit, or a panic rolls the transaction back
// before ExecTx returns. Nested calls are not supported.
//
//	err := d.ExecTx(ctx, func(tx *Tx) error {
//	    if _, err := tx.Exec(ctx, "UPDATE Emp SET salary=? WHERE empno=?", raise, 7369); err != nil {
//	        return err
//	    }
//	    _, err := tx.Exec(ctx, "UPDATE Emp SET salary=? WHERE empno=?", raise, 7499)
//	    return err
//	})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) error {
	return execTx(ctx, &d.session, d.sqldb, fn, opts...)
}

func execTx(ctx context.Context, s *session, b txBeginner, fn func(*Tx) error, opts ...TxOptions) (err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sqlOpts *sql.TxOptions
	if len(opts) > 0 {
		sqlOpts = &sql.TxOptions{
			Isolation: opts[0].Isolation,
			ReadOnly:  opts[0].ReadOnly,
		}
	}

	sqltx, err := b.BeginTx(ctx, sqlOpts)
	if err != nil {
		return s.mapErr(err)
	}

	inner := *s
	inner.ex = sqltx
	tx := &Tx{session: inner, sqltx: sqltx}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p) // re-panic after rollback
		}
		if rbErr := sqltx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = fmt.Errorf("hrdao/db: rollback failed (%v) after original error: %w", rbErr, err)
		}
	}()

	if err = fn(tx); err != nil {
		return s.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return s.mapErr(err)
	}
	committed = true
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Querier — the shared interface accepted by DAOs
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the minimal interface shared by *DB, *Conn and *Tx.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
	Prepare(ctx context.Context, query string) (*Stmt, error)
}

var (
	_ Querier  = (*DB)(nil)
	_ Querier  = (*Conn)(nil)
	_ Querier  = (*Tx)(nil)
	_ TxRunner = (*DB)(nil)
	_ TxRunner = (*Conn)(nil)
)
