package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/galleytrack/galleytrack/internal/evaluation"
	jobmetrics "github.com/galleytrack/galleytrack/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LeaderboardWarmupJob pre-populates the leaderboard caches so the
// first request after invalidation never pays the rebuild cost.
type LeaderboardWarmupJob struct {
	Evaluation *evaluation.Service
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewLeaderboardWarmupJob wires dependencies for the warmup handler.
func NewLeaderboardWarmupJob(evaluationSvc *evaluation.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *LeaderboardWarmupJob {
	return &LeaderboardWarmupJob{
		Evaluation: evaluationSvc,
		Logger:     logger,
		Metrics:    metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes leaderboard warmup tasks.
func (j *LeaderboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Evaluation == nil {
		return errors.New("leaderboard warmup: handler not configured")
	}
	var payload LeaderboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting leaderboard warmup")

	tracker := j.metrics().Track(TaskLeaderboardWarmup)
	start := j.clock()
	if err := j.Evaluation.WarmLeaderboards(ctx); err != nil {
		logger.Error("warm leaderboards", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed leaderboard warmup", slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *LeaderboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LeaderboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
