package db

import (
	"context"
	"database/sql"
	"time"
)

// execer is the method set shared by *sql.DB, *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// session is the single execution path behind DB, Conn and Tx: it rebinds
// placeholders, applies the default timeout, dispatches hooks and maps errors.
type session struct {
	ex      execer
	hooks   hookChain
	errMap  ErrorMapper
	bind    BindStyle
	timeout time.Duration
}

// Exec executes a statement that returns no rows (INSERT, UPDATE, DELETE, DDL).
func (s *session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query = Rebind(s.bind, query)
	start := time.Now()
	s.hooks.Before(ctx, query, args)
	res, err := s.ex.ExecContext(ctx, query, args...)
	err = s.mapErr(err)
	s.hooks.After(ctx, QueryEvent{
		Query: query, Args: args, Duration: time.Since(start),
		RowsAffected: rowsAffected(res, err), Err: err,
	})
	return res, err
}

// Query executes a query that returns rows.
// The caller MUST close the returned *Rows.
func (s *session) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := s.withTimeout(ctx)

	query = Rebind(s.bind, query)
	start := time.Now()
	s.hooks.Before(ctx, query, args)
	rows, err := s.ex.QueryContext(ctx, query, args...)
	err = s.mapErr(err)
	s.hooks.After(ctx, QueryEvent{Query: query, Args: args, Duration: time.Since(start), RowsAffected: -1, Err: err})
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel, errMap: s.errMap}, nil
}

// QueryRow executes a query expected to return at most one row.
// ErrNotFound is returned from Scan when no row matches.
func (s *session) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := s.withTimeout(ctx)

	query = Rebind(s.bind, query)
	start := time.Now()
	s.hooks.Before(ctx, query, args)
	raw := s.ex.QueryRowContext(ctx, query, args...)
	s.hooks.After(ctx, QueryEvent{
		Query: query, Args: args, Duration: time.Since(start),
		RowsAffected: -1, Err: s.mapErr(raw.Err()),
	})
	return &Row{raw: raw, cancel: cancel, errMap: s.errMap}
}

// Prepare creates a prepared statement for repeated use.
// The caller is responsible for calling stmt.Close().
func (s *session) Prepare(ctx context.Context, query string) (*Stmt, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query = Rebind(s.bind, query)
	st, err := s.ex.PrepareContext(ctx, query)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return &Stmt{stmt: st, query: query, hooks: s.hooks, errMap: s.errMap, timeout: s.timeout}, nil
}

// rowsAffected reports res's count for hooks, or -1 when unavailable.
func rowsAffected(res sql.Result, err error) int64 {
	if err != nil || res == nil {
		return -1
	}
	n, err := res.RowsAffected()
	if err != nil {
		return -1
	}
	return n
}

func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return applyTimeout(ctx, s.timeout)
}

func (s *session) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return s.errMap.Map(err)
}

func applyTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {} // caller already set a deadline
	}
	return context.WithTimeout(ctx, d)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row — wraps *sql.Row to translate errors uniformly
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	cancel context.CancelFunc
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	defer r.cancel()
	return r.errMap.Map(r.raw.Scan(dest...))
}

// ─────────────────────────────────────────────────────────────────────────────
// Rows — wraps *sql.Rows so Close also releases the statement deadline
// ─────────────────────────────────────────────────────────────────────────────

// Rows is a *sql.Rows whose Close also releases the default-timeout context.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
	errMap ErrorMapper
}

// Err returns the mapped error encountered during iteration, if any.
func (r *Rows) Err() error {
	if err := r.Rows.Err(); err != nil {
		return r.errMap.Map(err)
	}
	return nil
}

// Close closes the result set.
func (r *Rows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Stmt — wraps *sql.Stmt
// ─────────────────────────────────────────────────────────────────────────────

// Stmt wraps a prepared *sql.Stmt with hook dispatch and error mapping.
type Stmt struct {
	stmt    *sql.Stmt
	query   string
	hooks   hookChain
	errMap  ErrorMapper
	timeout time.Duration
}

// Exec executes the prepared statement.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	ctx, cancel := applyTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		err = s.errMap.Map(err)
	}
	s.hooks.After(ctx, QueryEvent{
		Query: s.query, Args: args, Duration: time.Since(start),
		RowsAffected: rowsAffected(res, err), Err: err,
	})
	return res, err
}

// QueryRow executes the prepared statement expecting one row.
func (s *Stmt) QueryRow(ctx context.Context, args ...any) *Row {
	ctx, cancel := applyTimeout(ctx, s.timeout)

	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	raw := s.stmt.QueryRowContext(ctx, args...)
	s.hooks.After(ctx, QueryEvent{Query: s.query, Args: args, Duration: time.Since(start), RowsAffected: -1})
	return &Row{raw: raw, cancel: cancel, errMap: s.errMap}
}

// Close releases the prepared statement resources.
func (s *Stmt) Close() error { return s.stmt.Close() }
