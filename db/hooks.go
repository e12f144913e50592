package db

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// QueryEvent describes one statement after the driver returned.
type QueryEvent struct {
	Query    string
	Args     []any
	Duration time.Duration
	// RowsAffected is the driver's count for Exec calls. It is -1 for
	// statements that return rows or when the driver cannot report it.
	RowsAffected int64
	// Err is the mapped error handed back to the caller.
	Err error
}

// Verb is the leading SQL keyword of the statement, upper-cased
// ("SELECT", "INSERT", ...).
func (ev QueryEvent) Verb() string {
	q := strings.TrimSpace(ev.Query)
	if i := strings.IndexAny(q, " \t\r\n("); i > 0 {
		q = q[:i]
	}
	return strings.ToUpper(q)
}

// Hook observes every statement run through DB, Conn, Tx or Stmt.
// Implementations must be safe for concurrent use; a panicking hook is
// recovered and logged.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)
	AfterQuery(ctx context.Context, ev QueryEvent)
}

type hookChain []Hook

func newHookChain(hooks []Hook) hookChain {
	var c hookChain
	for _, h := range hooks {
		if h != nil {
			c = append(c, h)
		}
	}
	return c
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c {
		guardHook(func() { h.BeforeQuery(ctx, query, args) })
	}
}

func (c hookChain) After(ctx context.Context, ev QueryEvent) {
	for _, h := range c {
		guardHook(func() { h.AfterQuery(ctx, ev) })
	}
}

func guardHook(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("hrdao/db: hook panic", "panic", r)
		}
	}()
	fn()
}

// LogHookConfig configures NewLogHook.
type LogHookConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// SlowQueryThreshold raises statements slower than this to warn level.
	// Zero disables it.
	SlowQueryThreshold time.Duration
	// LogArgs adds bound parameters to each entry. Emp rows carry salaries,
	// so keep it off outside development.
	LogArgs bool
	// MaxQueryLen truncates the logged statement text. Zero means 500.
	MaxQueryLen int
}

// NewLogHook returns a Hook writing one slog entry per statement with the
// statement verb, duration and, for writes, the affected-row count.
// A statement that matched no row is not an error and logs at debug.
func NewLogHook(cfg LogHookConfig) Hook {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxQueryLen <= 0 {
		cfg.MaxQueryLen = 500
	}
	return logHook(cfg)
}

type logHook LogHookConfig

func (logHook) BeforeQuery(context.Context, string, []any) {}

func (h logHook) AfterQuery(ctx context.Context, ev QueryEvent) {
	attrs := []any{
		slog.String("op", ev.Verb()),
		slog.String("query", truncate(ev.Query, h.MaxQueryLen)),
		slog.Duration("duration", ev.Duration),
	}
	if ev.RowsAffected >= 0 {
		attrs = append(attrs, slog.Int64("rows_affected", ev.RowsAffected))
	}
	if h.LogArgs && len(ev.Args) > 0 {
		attrs = append(attrs, slog.Any("args", ev.Args))
	}

	switch {
	case ev.Err != nil && !IsNotFound(ev.Err):
		h.Logger.ErrorContext(ctx, "hrdao/db: statement failed", append(attrs, slog.Any("error", ev.Err))...)
	case h.SlowQueryThreshold > 0 && ev.Duration > h.SlowQueryThreshold:
		h.Logger.WarnContext(ctx, "hrdao/db: slow statement", attrs...)
	default:
		h.Logger.DebugContext(ctx, "hrdao/db: statement", attrs...)
	}
}

func truncate(q string, n int) string {
	if len(q) > n {
		return q[:n] + "…"
	}
	return q
}
