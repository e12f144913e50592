package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query or mutation matches no rows.
	ErrNotFound = errors.New("hrdao/db: record not found")

	// ErrDuplicateKey is returned on unique or primary key violations.
	ErrDuplicateKey = errors.New("hrdao/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("hrdao/db: foreign key violation")

	// ErrDeadlock is returned when the database detects a deadlock or the
	// database file is locked.
	ErrDeadlock = errors.New("hrdao/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline or its
	// context is cancelled.
	ErrTimeout = errors.New("hrdao/db: query timeout")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("hrdao/db: check constraint violation")

	// ErrConnectionFailed is returned when the driver cannot reach the server.
	ErrConnectionFailed = errors.New("hrdao/db: connection failed")

	// ErrUnknownColumn is returned by Record when a column is absent from the row.
	ErrUnknownColumn = errors.New("hrdao/db: unknown column")

	// ErrNullValue is returned by Value when a required column is NULL.
	ErrNullValue = errors.New("hrdao/db: unexpected NULL")
)

// ─────────────────────────────────────────────────────────────────────────────
// Error helpers — use errors.Is() for type-safe checks
// ─────────────────────────────────────────────────────────────────────────────

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsConnectionFailed(err error) bool    { return errors.Is(err, ErrConnectionFailed) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError — rich error type preserving original driver error
// ─────────────────────────────────────────────────────────────────────────────

// DBError wraps a sentinel error with the original driver error so callers can
// either use errors.Is(err, ErrDuplicateKey) for simple checks or inspect the
// raw driver error for additional context.
type DBError struct {
	// Sentinel is one of the package-level Err* variables.
	Sentinel error
	// Cause is the original driver error.
	Cause error
	// Message is an optional human-readable hint.
	Message string
}

func (e *DBError) Error() string {
	if e.Cause == nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Sentinel, e.Message)
		}
		return e.Sentinel.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Sentinel, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper interface — pluggable per driver
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinel errors.
// A mapper returns err unchanged when it does not recognise it.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc is a convenience adapter from a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles the conditions every driver shares (no rows,
// context expiry, lost connections) and then tries each built-in driver's
// typed error mapping.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	// Already mapped — do not double-wrap
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}

	for _, m := range []ErrorMapperFunc{mapPQError, mapPGXError, mapMySQLError, mapSQLiteError} {
		if mapped := m(err); mapped != err {
			return mapped
		}
	}
	return err
}

// asConnErr classifies an error raised while establishing a connection.
// Network-level failures become ErrConnectionFailed; anything else is left
// for the regular mapper.
func asConnErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// ChainMapper — compose multiple mappers (first match wins)
// ─────────────────────────────────────────────────────────────────────────────

// ChainMapper returns an ErrorMapper that tries each mapper in order,
// returning the first remapped error.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
