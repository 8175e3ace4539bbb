package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/jobboard/api"
	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/account"
	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/board"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/jobs"
	"github.com/garnizeh/jobboard/internal/moderation"
	"github.com/garnizeh/jobboard/internal/notify"
	"github.com/garnizeh/jobboard/internal/ratelimit"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/internal/review"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting jobboard server", "version", version, "build_time", buildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open DB", "err", err)
		os.Exit(1)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	repo := sqlite.New(database, logger).Repository()
	renderer := notify.NewRenderer(repo.User)

	var (
		publisher notify.Publisher
		pool      *jobs.WorkerPool
	)
	if cfg.Notify.Async {
		queue := jobs.NewRepository(database)
		pool = jobs.NewWorkerPool(queue, map[string]jobs.Handler{
			notify.JobType: notify.Handler(renderer, repo.Notification, logger),
		}, logger, jobs.PoolConfig{
			Workers:      cfg.Notify.Workers,
			PollInterval: cfg.Notify.PollInterval,
		})
		pool.Start(ctx)
		publisher = notify.NewOutbox(queue, cfg.Notify.MaxAttempts)
	} else {
		publisher = notify.NewDirect(renderer, repo.Notification)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.New(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, "jobboard:rl", logger)
	}

	act := activity.NewService(repo.Activity, repo.Schema, logger)
	handler := api.SetupRoutes(cfg, version, buildTime, &api.Services{
		Users:      repo.User,
		Accounts:   account.NewService(repo.User, act, logger),
		Moderation: moderation.NewService(repo, act, publisher, logger),
		Board:      board.NewService(repo, act, publisher, logger),
		Reviews:    review.NewService(repo, act, publisher, logger, cfg.Reviews.FlagThreshold),
		Inbox:      notify.NewInbox(repo.Notification),
		Activity:   act,
		Limiter:    limiter,
		DB:         database,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "async_notifications", cfg.Notify.Async)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	// Queued notifications stay in the jobs table and resume on restart.
	if pool != nil {
		pool.Stop()
	}
	cancel()

	// Close database connection
	if err := database.Close(); err != nil {
		logger.Error("error closing DB", "err", err)
	}

	logger.Info("server exited")
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
