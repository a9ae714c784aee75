package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/galleytrack/galleytrack/internal/app"
	"github.com/galleytrack/galleytrack/internal/batches"
	"github.com/galleytrack/galleytrack/internal/drawers"
	"github.com/galleytrack/galleytrack/internal/employees"
	"github.com/galleytrack/galleytrack/internal/evaluation"
	"github.com/galleytrack/galleytrack/internal/history"
	"github.com/galleytrack/galleytrack/internal/observability"
	"github.com/galleytrack/galleytrack/internal/platform/cache"
	"github.com/galleytrack/galleytrack/internal/platform/db"
	"github.com/galleytrack/galleytrack/internal/tracking"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, leaderboard cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	batchService := batches.NewService(batches.NewRepository(pool))
	drawerService := drawers.NewService(drawers.NewRepository(pool))
	employeeService := employees.NewService(employees.NewRepository(pool))
	trackingService := tracking.NewService(tracking.NewRepository(pool), logger, metrics)
	historyService := history.NewService(history.NewRepository(pool))
	evaluationCache := evaluation.NewCache(redisClient, cfg.LeaderboardCacheTTL)
	evaluationService := evaluation.NewService(evaluation.NewRepository(pool), evaluationCache)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		BatchHandler:      batches.NewHandler(logger, batchService),
		DrawerHandler:     drawers.NewHandler(logger, drawerService),
		EmployeeHandler:   employees.NewHandler(logger, employeeService),
		TrackingHandler:   tracking.NewHandler(logger, trackingService),
		HistoryHandler:    history.NewHandler(logger, historyService),
		EvaluationHandler: evaluation.NewHandler(logger, evaluationService),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
