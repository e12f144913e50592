// Package dao holds the data-access objects for the Dept and Emp tables.
//
// Every operation checks out its own connection from a db.ConnProvider and
// returns it before the call ends; DAO values hold no other state and are safe
// for concurrent use.
package dao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skryldev/hrdao/db"
)

// ErrInvalidPage is returned by List for a negative limit or offset. Drivers
// disagree on those (sqlite3 reads a negative LIMIT as unlimited, PostgreSQL
// rejects it), so they never reach the database.
var ErrInvalidPage = errors.New("dao: limit and offset must not be negative")

func checkPage(limit, offset int) error {
	if limit < 0 || offset < 0 {
		return fmt.Errorf("%w: limit=%d offset=%d", ErrInvalidPage, limit, offset)
	}
	return nil
}

// findOne runs query on a fresh connection and maps the first row, if any.
func findOne[T any](
	ctx context.Context,
	conns db.ConnProvider,
	mapFn func(db.ColumnReader) (T, error),
	query string,
	args ...any,
) (T, bool, error) {
	var zero T

	conn, err := conns.Conn(ctx)
	if err != nil {
		return zero, false, err
	}
	defer conn.Close()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return zero, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return zero, false, rows.Err()
	}
	rec, err := db.ScanRecord(rows)
	if err != nil {
		return zero, false, err
	}
	v, err := mapFn(rec)
	if err != nil {
		return zero, false, fmt.Errorf("map row: %w", err)
	}
	return v, true, nil
}

// findMany runs query on a fresh connection and maps every row.
func findMany[T any](
	ctx context.Context,
	conns db.ConnProvider,
	mapFn func(db.ColumnReader) (T, error),
	query string,
	args ...any,
) ([]T, error) {
	conn, err := conns.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := db.ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		v, err := mapFn(rec)
		if err != nil {
			return nil, fmt.Errorf("map row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// exec runs a single mutating statement on a fresh connection and returns the
// number of affected rows.
func exec(ctx context.Context, conns db.ConnProvider, query string, args ...any) (int64, error) {
	conn, err := conns.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// batch inserts items through one prepared statement inside one transaction
// on a single connection.
func batch[T any](ctx context.Context, conns db.ConnProvider, query string, items []T, argsFn func(T) []any) error {
	conn, err := conns.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return db.BatchExec(ctx, conn, query, items, argsFn)
}

// requireAffected turns a zero row count into db.ErrNotFound.
func requireAffected(n int64, table string, id int64) error {
	if n == 0 {
		return &db.DBError{Sentinel: db.ErrNotFound, Message: fmt.Sprintf("%s %d", table, id)}
	}
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
