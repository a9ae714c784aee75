package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/galleytrack/galleytrack/internal/history"
	jobmetrics "github.com/galleytrack/galleytrack/internal/jobs"
)

// HistoryRetentionJob prunes audit records older than the retention
// window. The HTTP surface stays append-only; only this job deletes.
type HistoryRetentionJob struct {
	History *history.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewHistoryRetentionJob wires dependencies for the retention handler.
func NewHistoryRetentionJob(historySvc *history.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *HistoryRetentionJob {
	return &HistoryRetentionJob{History: historySvc, Logger: logger, Metrics: metrics}
}

// Handle processes retention sweep tasks.
func (j *HistoryRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.History == nil {
		return errors.New("history retention: handler not configured")
	}
	var payload HistoryRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours <= 0 {
		return asynq.SkipRetry
	}

	retention := time.Duration(payload.RetentionHours) * time.Hour
	tracker := j.metrics().Track(TaskHistoryRetention)
	deleted, err := j.History.Prune(ctx, retention)
	if err != nil {
		j.logger().Error("prune restock history", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddPruned(deleted)

	j.logger().Info("completed history retention sweep",
		slog.Int64("deleted", deleted),
		slog.Duration("retention", retention))
	return tracker.End(nil)
}

func (j *HistoryRetentionJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *HistoryRetentionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
