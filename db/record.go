package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// ColumnReader reads a single column of the current row by name into dest.
// Row mappers depend on this capability only, so they can be exercised with
// synthetic rows and stay independent of the statement that produced them.
type ColumnReader interface {
	Column(name string, dest sql.Scanner) error
}

// Record is one result row keyed by lower-cased column name. Values are the
// raw driver values (int64, float64, []byte, string, bool, time.Time or nil).
type Record map[string]any

// Column scans the named column into dest. Names are matched case-insensitively.
func (r Record) Column(name string, dest sql.Scanner) error {
	v, ok := r[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if err := dest.Scan(v); err != nil {
		return fmt.Errorf("hrdao/db: column %q: %w", name, err)
	}
	return nil
}

// rowScanner is the part of *sql.Rows (and *Rows) ScanRecord needs.
type rowScanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

// ScanRecord copies the current row into a Record. Call it after a
// successful rows.Next().
func ScanRecord(rows rowScanner) (Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	rec := make(Record, len(cols))
	for i, c := range cols {
		rec[strings.ToLower(c)] = vals[i]
	}
	return rec, nil
}

// Value reads a NOT NULL column. ErrNullValue is returned when the column is NULL.
func Value[T any](r ColumnReader, name string) (T, error) {
	var n sql.Null[T]
	if err := r.Column(name, &n); err != nil {
		return n.V, err
	}
	if !n.Valid {
		return n.V, fmt.Errorf("%w: column %q", ErrNullValue, name)
	}
	return n.V, nil
}

// Nullable reads a column that may be NULL.
func Nullable[T any](r ColumnReader, name string) (sql.Null[T], error) {
	var n sql.Null[T]
	err := r.Column(name, &n)
	return n, err
}
