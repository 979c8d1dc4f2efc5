package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sns/internal/config"
	"sns/internal/db"
	"sns/internal/handlers"
	"sns/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv()

	cmd := &cobra.Command{
		Use:           "sns",
		Short:         "Posts, comments and likes over a JSON API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cfg.Logger(os.Stderr))
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	f.StringVar(&cfg.Driver, "db-driver", cfg.Driver, "database engine: sqlite or postgres")
	f.StringVar(&cfg.DSN, "db-dsn", cfg.DSN, "sqlite file path or postgres connection URL")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	f.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second per client, 0 disables")
	f.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "burst size per client")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for in-flight requests")
	f.StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "allowed CORS origin, repeatable (default all)")

	return cmd
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Driver == db.DriverSQLite {
		if dir := sqliteDir(cfg.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}
	}

	conn, err := db.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	// The store is ephemeral: every start begins with empty tables.
	if err := db.Reset(ctx, conn, cfg.Driver, log); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	log.Info("database ready", slog.String("driver", cfg.Driver))

	h := handlers.New(store.New(conn, cfg.Driver, store.WithLogger(log)), log)

	opts := handlers.RouterOptions{CORSOrigins: cfg.CORSOrigins}
	if cfg.RateLimit > 0 {
		rl := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, time.Minute)
		go rl.Run(ctx)
		opts.RateLimiter = rl
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(h, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sqliteDir returns the directory holding the database file, or "" when
// there is nothing to create.
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
