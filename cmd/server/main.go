package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/service"
	"github.com/JonMunkholm/roster/internal/storage"
	"github.com/JonMunkholm/roster/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open roster source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	svc := service.New(source, service.Options{
		Threshold:       cfg.Roster.Threshold,
		BatchTTL:        cfg.Roster.BatchTTL,
		GateWait:        cfg.Roster.LockWait,
		Autosave:        cfg.Roster.Autosave,
		CreateIfMissing: cfg.Roster.CreateIfMissing,
	})
	if _, err := svc.Open(ctx); err != nil {
		slog.Error("failed to load roster", "source", source.Name(), "error", err)
		os.Exit(1)
	}

	server := web.NewServer(svc, cfg)

	// Background jobs stop when jobCtx is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go svc.StartBatchSweeper(jobCtx, cfg.Roster.SweepInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Waits for the in-flight roster operation and flushes unsaved edits
		if err := svc.Close(shutdownCtx); err != nil {
			slog.Error("roster close error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openSource builds the configured storage backend. The returned func
// releases its resources.
func openSource(ctx context.Context, cfg *config.Config) (storage.Source, func(), error) {
	if cfg.Roster.Backend != config.BackendPostgres {
		slog.Info("using workbook", "file", cfg.Roster.File)
		return storage.NewExcelSource(cfg.Roster.File), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	src := storage.NewPostgresSource(pool)
	if err := src.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return src, pool.Close, nil
}
