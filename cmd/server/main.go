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

	"github.com/JonMunkholm/csvcell/internal/codec"
	"github.com/JonMunkholm/csvcell/internal/config"
	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/directory"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"entity_type", cfg.Codec.EntityTypeCode,
		"directory", directorySource(cfg),
		"batch_max_concurrent", cfg.Batch.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	dir, closeDir, err := openDirectory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open attribute directory", "error", err)
		os.Exit(1)
	}
	defer closeDir()

	service, err := core.NewService(ctx, cfg.Codec.Configuration(), dir, core.Options{
		MaxBatchCells:        cfg.Batch.MaxCells,
		MaxConcurrentBatches: cfg.Batch.MaxConcurrent,
		MaxWaitTime:          cfg.Batch.MaxWaitTime,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err, "code", core.MapError(err).Code)
		os.Exit(1)
	}

	if attrs, err := service.ListAttributes(ctx); err == nil {
		slog.Info("attributes available", "entity_type", service.EntityType().Code, "count", len(attrs))
	} else if !errors.Is(err, codec.ErrUnsupported) {
		slog.Warn("failed to list attributes", "error", err)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running batches to finish (with timeout)
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for batches to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("batches did not complete in time", "error", err)
			} else {
				slog.Info("all batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openDirectory builds the attribute directory named by the configuration.
// The returned func releases its resources.
func openDirectory(ctx context.Context, cfg *config.Config) (codec.Directory, func(), error) {
	var (
		dir     codec.Directory
		closeFn = func() {}
	)

	if cfg.Directory.UsesDatabase() {
		// Parse and configure connection pool
		poolConfig, err := pgxpool.ParseConfig(cfg.Directory.URL)
		if err != nil {
			return nil, nil, err
		}
		poolConfig.MaxConns = int32(cfg.Directory.MaxConns)
		poolConfig.MinConns = int32(cfg.Directory.MinConns)
		poolConfig.MaxConnLifetime = cfg.Directory.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Directory.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		if u, err := url.Parse(cfg.Directory.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}

		dir = directory.NewPostgres(pool)
		closeFn = pool.Close
	} else {
		mem, err := directory.LoadYAMLFile(cfg.Directory.AttributeFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("loaded attribute catalog", "path", cfg.Directory.AttributeFile, "attributes", mem.Len())
		dir = mem
	}

	if cfg.Directory.Cache {
		dir = directory.NewCached(dir)
	}
	return dir, closeFn, nil
}

func directorySource(cfg *config.Config) string {
	if cfg.Directory.UsesDatabase() {
		return "postgres"
	}
	return "yaml"
}
