package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/galleytrack/galleytrack/internal/app"
	"github.com/galleytrack/galleytrack/internal/evaluation"
	"github.com/galleytrack/galleytrack/internal/history"
	"github.com/galleytrack/galleytrack/internal/platform/cache"
	"github.com/galleytrack/galleytrack/internal/platform/db"
	"github.com/galleytrack/galleytrack/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	evaluationCache := evaluation.NewCache(redisClient, cfg.LeaderboardCacheTTL)
	evaluationService := evaluation.NewService(evaluation.NewRepository(pool), evaluationCache)
	historyService := history.NewService(history.NewRepository(pool))

	warmupJob := jobs.NewLeaderboardWarmupJob(evaluationService, logger, nil)
	retentionJob := jobs.NewHistoryRetentionJob(historyService, logger, nil)

	warmupTask, err := jobs.NewLeaderboardWarmupTask("scheduled")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	retentionTask, err := jobs.NewHistoryRetentionTask(int(cfg.HistoryRetention.Hours()))
	if err != nil {
		logger.Error("build retention task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLeaderboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskHistoryRetention, Handler: retentionJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: retentionTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
