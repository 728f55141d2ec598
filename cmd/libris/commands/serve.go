package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/libris/internal/cache"
	"github.com/pkordes/libris/internal/config"
	"github.com/pkordes/libris/internal/handler"
	"github.com/pkordes/libris/internal/middleware"
	"github.com/pkordes/libris/internal/repo"
	"github.com/pkordes/libris/internal/repo/gormstore"
	"github.com/pkordes/libris/internal/repo/memory"
	"github.com/pkordes/libris/internal/service"
)

const shutdownTimeout = 15 * time.Second

// serveCmd runs the API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server. Configuration comes from the environment:

  PORT              listen port (8080)
  LOG_LEVEL         debug, info, warn or error (info)
  STORE             memory, postgres, sqlite or mysql (memory)
  DATABASE_URL      connection string for the SQL stores
  MIGRATE_ON_START  apply pending migrations first, postgres only (false)
  CORS_ORIGINS      comma-separated allowed origins
  MAX_BODY_BYTES    request body limit (1048576)
  REDIS_ADDR        enables Idempotency-Key handling when set
  REDIS_DB          Redis logical database (0)
  IDEMPOTENCY_TTL   how long responses stay replayable (24h)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Router -----------------------------------------------------------
	routerCfg := handler.RouterConfig{
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		routerCfg.Idempotency = middleware.NewIdempotencyHandler(rdb, cfg.IdempotencyTTL, logger)
		logger.Info("idempotency keys enabled", "redis", cfg.RedisAddr, "ttl", cfg.IdempotencyTTL.String())
	}

	srv := handler.NewServer(
		service.NewBookService(store),
		service.NewLoanService(store, store),
		service.NewExportService(store, store),
	)

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(srv, routerCfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr, "store", cfg.Store)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newLogger returns a JSON logger at level, falling back to info when level
// does not parse.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// openStore builds the backend named by cfg.Store. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		if cfg.MigrateOnStart {
			results, err := migrateUp(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, nil, err
			}
			logger.Info("migrations applied", "count", len(results))
		}

		// New does not open connections; Ping verifies the DB is reachable
		// before accepting traffic.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("database connection established", "store", cfg.Store)
		return repo.NewPostgresStore(pool), pool.Close, nil

	case config.StoreSQLite, config.StoreMySQL:
		s, err := gormstore.Open(cfg.Store, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connection established", "store", cfg.Store)
		return s, func() { _ = s.Close() }, nil

	default:
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}
}
