package db

import (
	"context"
	"database/sql"
)

// ConnProvider hands out one dedicated connection per call. The caller owns
// the returned *Conn and must Close it before the operation returns.
type ConnProvider interface {
	Conn(ctx context.Context) (*Conn, error)
}

// Conn is a single connection checked out of the pool. It mirrors the DB API
// surface, so it satisfies Querier, and can run scoped transactions.
type Conn struct {
	session
	sqlconn *sql.Conn
}

// Conn acquires a dedicated connection from the pool. Failures to reach the
// server are reported as ErrConnectionFailed; an expired context as ErrTimeout.
func (d *DB) Conn(ctx context.Context) (*Conn, error) {
	actx, cancel := d.withTimeout(ctx)
	defer cancel()

	c, err := d.sqldb.Conn(actx)
	if err != nil {
		return nil, d.mapErr(asConnErr(err))
	}
	s := d.session
	s.ex = c
	return &Conn{session: s, sqlconn: c}, nil
}

// Raw returns the underlying *sql.Conn.
func (c *Conn) Raw() *sql.Conn { return c.sqlconn }

// Close returns the connection to the pool.
func (c *Conn) Close() error { return c.sqlconn.Close() }

// ExecTx runs fn in a transaction bound to this connection.
// See DB.ExecTx for commit and rollback semantics.
func (c *Conn) ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) error {
	return execTx(ctx, &c.session, c.sqlconn, fn, opts...)
}

var _ ConnProvider = (*DB)(nil)
