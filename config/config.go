// Package config loads runtime configuration from the environment.
//
// Variables use the HRDAO_ prefix and a double underscore for nesting, so
// HRDAO_DATABASE__MAX_OPEN_CONNS maps to database.max_open_conns. A .env file
// in the working directory is loaded first, if present.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload" // load .env before reading the environment
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/Skryldev/hrdao/db"
)

const envPrefix = "HRDAO_"

// Config is the root configuration object.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Log      LogConfig      `koanf:"log" validate:"required"`
}

// DatabaseConfig selects the driver and either a ready DSN or the structured
// parts the driver builds one from.
type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=sqlite3 postgres pgx mysql"`
	DSN      string `koanf:"dsn" validate:"required_without=Name"`
	Host     string `koanf:"host" validate:"required_with=Port"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`

	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"gte=0"`
	DefaultTimeout  time.Duration `koanf:"default_timeout" validate:"gte=0"`
}

// LogConfig controls the process logger and the statement log hook.
type LogConfig struct {
	Level              string        `koanf:"level" validate:"oneof=debug info warn error"`
	Format             string        `koanf:"format" validate:"oneof=json text"`
	LogArgs            bool          `koanf:"log_args"`
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold" validate:"gte=0"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 200 * time.Millisecond,
		},
	}
}

// Load reads HRDAO_* environment variables over the defaults and validates
// the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// A bare sqlite3 setup needs no settings at all.
	if cfg.Database.Driver == "sqlite3" && cfg.Database.DSN == "" && cfg.Database.Name == "" {
		cfg.Database.DSN = "hrdao.db"
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Open opens the configured database. The DSN is used verbatim when set;
// otherwise the driver builds one from the structured fields.
func (c DatabaseConfig) Open(hooks ...db.Hook) (*db.DB, error) {
	cfg := db.Config{
		DSN:             c.DSN,
		DriverName:      c.Driver,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		DefaultTimeout:  c.DefaultTimeout,
		Hooks:           hooks,
	}
	if c.DSN != "" {
		return db.Open(cfg)
	}
	return db.OpenWithDriver(c.Driver, c.DriverOptions(), cfg)
}

// DriverOptions returns the structured connection parameters.
func (c DatabaseConfig) DriverOptions() db.DriverOptions {
	return db.DriverOptions{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
	}
}

// SlogLevel converts Level to a slog.Level; unknown values mean info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LogHook returns the statement logging hook configured by c.
func (c LogConfig) LogHook(logger *slog.Logger) db.Hook {
	return db.NewLogHook(db.LogHookConfig{
		Logger:             logger,
		SlowQueryThreshold: c.SlowQueryThreshold,
		LogArgs:            c.LogArgs,
	})
}
