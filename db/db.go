// Package db is the SQL toolkit the DAOs run on: a thin wrapper around
// database/sql that adds per-call connection scoping, hook dispatch, unified
// error mapping, placeholder rebinding and scoped transactions. It is NOT an
// ORM — all SQL is explicit and owned by the caller.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "sqlite3", "postgres", "pgx" or "mysql".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// PingTimeout bounds the connectivity check in Open. Defaults to 5s.
	PingTimeout time.Duration

	// Hooks executed around every statement. nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB — the central type
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB.
//
// DB is also the production ConnProvider: Conn checks a dedicated connection
// out of the pool for the duration of one operation.
type DB struct {
	session
	sqldb *sql.DB
	cfg   Config
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Callers are responsible for calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("hrdao/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("hrdao/db: DriverName must not be empty")
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("hrdao/db: open: %w", err)
	}

	// Pool tuning
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	errMap := DefaultErrorMapper()
	bind := BindQuestion
	if drv, err := LookupDriver(cfg.DriverName); err == nil {
		errMap = ChainMapper(drv.ErrorMapper(), DefaultErrorMapper())
		bind = drv.BindStyle()
	}

	d := &DB{
		session: session{
			ex:      sqldb,
			hooks:   newHookChain(cfg.Hooks),
			errMap:  errMap,
			bind:    bind,
			timeout: cfg.DefaultTimeout,
		},
		sqldb: sqldb,
		cfg:   cfg,
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("hrdao/db: ping: %w", d.mapErr(asConnErr(err)))
	}

	return d, nil
}

// MustOpen is like Open but panics on error. Useful in main() initialisation.
func MustOpen(cfg Config) *DB {
	d, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns the underlying *sql.DB for advanced use cases.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// DriverName reports the database/sql driver the pool was opened with.
func (d *DB) DriverName() string { return d.cfg.DriverName }

// SetErrorMapper replaces the error mapper with a custom one.
// Use this to add driver-specific error code translations.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.errMap = m }

// Close closes all pooled connections and frees resources.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	if err := d.sqldb.PingContext(ctx); err != nil {
		return d.mapErr(asConnErr(err))
	}
	return nil
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Batch helpers
// ─────────────────────────────────────────────────────────────────────────────

// TxRunner is implemented by *DB and *Conn.
type TxRunner interface {
	ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) error
}

// BatchExec runs query once per item inside a single transaction using one
// prepared statement. All statements succeed or the transaction is rolled back.
//
//	err := db.BatchExec(ctx, conn, "INSERT INTO Dept(deptno, dname, location) VALUES (?,?,?)", depts,
//	    func(d models.Department) []any { return []any{d.ID, d.Name, d.Location} })
func BatchExec[T any](
	ctx context.Context,
	r TxRunner,
	query string,
	items []T,
	argsFn func(T) []any,
) error {
	return r.ExecTx(ctx, func(tx *Tx) error {
		stmt, err := tx.Prepare(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, item := range items {
			if _, err := stmt.Exec(ctx, argsFn(item)...); err != nil {
				return fmt.Errorf("hrdao/db: batch item %d: %w", i, err)
			}
		}
		return nil
	})
}
