// Package config holds the server settings. Values come from defaults, then
// the environment, then command-line flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"sns/internal/db"
)

type Config struct {
	Addr            string
	Driver          string
	DSN             string
	LogLevel        string
	LogFormat       string
	RateLimit       float64 // requests per second per client; 0 disables
	RateBurst       int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

func Default() Config {
	return Config{
		Addr:            ":8000",
		Driver:          db.DriverSQLite,
		DSN:             "./data/sns.db",
		LogLevel:        "info",
		LogFormat:       "text",
		RateLimit:       0,
		RateBurst:       20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// FromEnv overlays environment variables on Default.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if p, ok := lookup("PORT"); ok && p != "" {
		c.Addr = ":" + p
	}
	if v, ok := lookup("SNS_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("SNS_DB_DRIVER"); ok && v != "" {
		c.Driver = v
	}
	if v, ok := lookup("SNS_DB_DSN"); ok && v != "" {
		c.DSN = v
	}
	if v, ok := lookup("SNS_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("SNS_LOG_FORMAT"); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup("SNS_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, fmt.Errorf("SNS_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup("SNS_RATE_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("SNS_RATE_BURST: %w", err)
		}
		c.RateBurst = n
	}
	if v, ok := lookup("SNS_CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q (want %s or %s)", c.Driver, db.DriverSQLite, db.DriverPostgres)
	}
	if c.DSN == "" {
		return fmt.Errorf("database DSN is empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is on")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// Logger builds the process logger. Call Validate first.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
