package db

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour:
//   - building a DSN from structured options
//   - the placeholder style statements are rebound to
//   - a mapper for the driver's typed errors
//
// Every built-in driver package registers itself with database/sql when this
// package is imported.
type Driver interface {
	// Name returns the name the driver is registered under with database/sql.
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)

	// BindStyle is the placeholder syntax the driver expects.
	BindStyle() BindStyle

	// ErrorMapper returns a mapper tuned to this driver's error types.
	ErrorMapper() ErrorMapper
}

// DriverOptions carries the most common connection parameters in a structured,
// driver-agnostic form. DSN() converts them to the driver's native format.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-full", etc.
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the global registry.
// Panics if a driver with the same name is already registered.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("hrdao/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name or an error.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("hrdao/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver opens a DB using a registered Driver and structured options,
// removing the need for manual DSN construction.
//
//	d, err := db.OpenWithDriver("pgx", db.DriverOptions{
//	    Host: "localhost", Port: 5432,
//	    User: "scott", Password: "tiger", Database: "hr",
//	}, db.Config{MaxOpenConns: 25})
func OpenWithDriver(driverName string, driverOpts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	dsn, err := drv.DSN(driverOpts)
	if err != nil {
		return nil, fmt.Errorf("hrdao/db: DSN construction failed: %w", err)
	}

	cfg.DriverName = drv.Name()
	cfg.DSN = dsn
	return Open(cfg)
}

func init() {
	RegisterDriver(SQLiteDriver{})
	RegisterDriver(PostgresDriver{})
	RegisterDriver(PgxDriver{})
	RegisterDriver(MySQLDriver{})
}

// guarded skips errors that were already translated.
func guarded(fn func(error) error) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		var dbe *DBError
		if errors.As(err, &dbe) {
			return err
		}
		return fn(err)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver is the lib/pq adapter.
type PostgresDriver struct{}

func (PostgresDriver) Name() string                        { return "postgres" }
func (PostgresDriver) DSN(o DriverOptions) (string, error) { return postgresURL("postgres", o) }
func (PostgresDriver) BindStyle() BindStyle                { return BindDollar }
func (PostgresDriver) ErrorMapper() ErrorMapper            { return guarded(mapPQError) }

func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	return mapByPGCode(string(pqErr.Code), err)
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (pgx/v5 stdlib)
// ─────────────────────────────────────────────────────────────────────────────

// PgxDriver is the jackc/pgx/v5 database/sql adapter.
type PgxDriver struct{}

func (PgxDriver) Name() string                        { return "pgx" }
func (PgxDriver) DSN(o DriverOptions) (string, error) { return postgresURL("pgx", o) }
func (PgxDriver) BindStyle() BindStyle                { return BindDollar }
func (PgxDriver) ErrorMapper() ErrorMapper            { return guarded(mapPGXError) }

func mapPGXError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	return mapByPGCode(pgErr.Code, err)
}

func postgresURL(driver string, o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("%s driver: Host and Database are required", driver)
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	q := url.Values{}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(o.Host, strconv.Itoa(port)),
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}
	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}
	return u.String(), nil
}

// PostgreSQL SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code string, cause error) error {
	switch code {
	case "23505": // unique_violation
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case "23503": // foreign_key_violation
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case "23514": // check_violation
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause}
	case "40P01": // deadlock_detected
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case "57014": // query_canceled (statement_timeout)
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return cause
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL
// ─────────────────────────────────────────────────────────────────────────────

// MySQLDriver is the go-sql-driver/mysql adapter. DSNs always enable
// parseTime, so DATE columns scan into time.Time, and clientFoundRows, so an
// UPDATE that matches a row without changing it still reports one row.
type MySQLDriver struct{}

func (MySQLDriver) Name() string             { return "mysql" }
func (MySQLDriver) BindStyle() BindStyle     { return BindQuestion }
func (MySQLDriver) ErrorMapper() ErrorMapper { return guarded(mapMySQLError) }

func (MySQLDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("mysql driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(port))
	cfg.DBName = o.Database
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if len(o.Extra) > 0 {
		cfg.Params = make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

func mapMySQLError(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case 1062: // ER_DUP_ENTRY
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case 1452, 1216, 1217, 1451: // ER_NO_REFERENCED_ROW, ER_ROW_IS_REFERENCED
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case 3819: // ER_CHECK_CONSTRAINT_VIOLATED
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	case 1213: // ER_LOCK_DEADLOCK
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	case 3024: // ER_QUERY_TIMEOUT
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	case 1045, 2002, 2003, 2006, 2013:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the mattn/go-sqlite3 adapter. Database is the file path.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string             { return "sqlite3" }
func (SQLiteDriver) BindStyle() BindStyle     { return BindQuestion }
func (SQLiteDriver) ErrorMapper() ErrorMapper { return guarded(mapSQLiteError) }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	q := url.Values{}
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	return "file:" + o.Database + "?" + q.Encode(), nil
}

func mapSQLiteError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case sqlite3.ErrConstraintForeignKey:
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case sqlite3.ErrConstraintCheck:
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	case sqlite3.ErrCantOpen:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	return err
}
