// Package jobs holds the background task types and their handlers.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLeaderboardWarmup rebuilds the cached leaderboards.
	TaskLeaderboardWarmup = "evaluation:leaderboard_warmup"
	// TaskHistoryRetention prunes audit records outside the retention window.
	TaskHistoryRetention = "history:retention_sweep"
)

// LeaderboardWarmupPayload configures a warmup run.
type LeaderboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewLeaderboardWarmupTask constructs a leaderboard warmup task.
func NewLeaderboardWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(LeaderboardWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaderboardWarmup, data), nil
}

// HistoryRetentionPayload configures a retention sweep.
type HistoryRetentionPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewHistoryRetentionTask constructs a retention sweep task.
func NewHistoryRetentionTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(HistoryRetentionPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHistoryRetention, data), nil
}
