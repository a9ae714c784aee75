package evaluation

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// RepositoryPort abstracts the aggregation queries for the service.
type RepositoryPort interface {
	PerformanceFor(ctx context.Context, employeeID string) (Performance, error)
	Leaderboard(ctx context.Context, metric Metric, limit int) ([]LeaderboardRow, error)
}

type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
}

func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// PerformanceFor aggregates one employee's metrics. Always computed
// fresh: the per-employee read is cheap and must reflect new records
// immediately.
func (s *Service) PerformanceFor(ctx context.Context, employeeID string) (Performance, error) {
	return s.repo.PerformanceFor(ctx, employeeID)
}

// Leaderboard returns cached rankings. Concurrent cache misses for the
// same metric and limit collapse into one database rebuild.
func (s *Service) Leaderboard(ctx context.Context, metric Metric, limit int) ([]LeaderboardRow, error) {
	if metric == "" {
		metric = MetricAccuracy
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if !ValidMetric(metric) {
		return s.repo.Leaderboard(ctx, metric, limit)
	}

	key := leaderboardKey(metric, limit)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var board []LeaderboardRow
		err := s.cache.FetchJSON(ctx, key, &board, func(ctx context.Context) (interface{}, error) {
			return s.repo.Leaderboard(ctx, metric, limit)
		})
		return board, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]LeaderboardRow), nil
}

// WarmLeaderboards rebuilds the default leaderboard for every metric.
// The background warmup job calls this after invalidating the cache.
func (s *Service) WarmLeaderboards(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		return err
	}
	for _, metric := range []Metric{MetricAccuracy, MetricEfficiency} {
		if _, err := s.Leaderboard(ctx, metric, defaultLeaderboardLimit); err != nil {
			return err
		}
	}
	return nil
}
