package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	performances map[string]Performance
	board        []LeaderboardRow
	calls        int
	lastMetric   Metric
	lastLimit    int
}

func (f *fakeRepo) PerformanceFor(ctx context.Context, employeeID string) (Performance, error) {
	return f.performances[employeeID], nil
}

func (f *fakeRepo) Leaderboard(ctx context.Context, metric Metric, limit int) ([]LeaderboardRow, error) {
	f.calls++
	f.lastMetric = metric
	f.lastLimit = limit
	if limit < len(f.board) {
		return f.board[:limit], nil
	}
	return f.board, nil
}

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestLeaderboardDefaults(t *testing.T) {
	repo := &fakeRepo{board: []LeaderboardRow{{Rank: 1, EmployeeID: "EMP-001"}}}
	svc := NewService(repo, nil)

	_, err := svc.Leaderboard(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, MetricAccuracy, repo.lastMetric)
	require.Equal(t, 10, repo.lastLimit)

	_, err = svc.Leaderboard(context.Background(), MetricEfficiency, 5000)
	require.NoError(t, err)
	require.Equal(t, MetricEfficiency, repo.lastMetric)
	require.Equal(t, 100, repo.lastLimit)
}

func TestLeaderboardCaching(t *testing.T) {
	repo := &fakeRepo{board: []LeaderboardRow{
		{Rank: 1, EmployeeID: "EMP-002", EmployeeName: "Jonas Petrov", TotalActions: 4, AverageScore: 96.5},
		{Rank: 2, EmployeeID: "EMP-001", EmployeeName: "Maya Lindqvist", TotalActions: 6, AverageScore: 91.2},
	}}
	cache, _ := testCache(t)
	svc := NewService(repo, cache)

	first, err := svc.Leaderboard(context.Background(), MetricAccuracy, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, repo.calls)

	second, err := svc.Leaderboard(context.Background(), MetricAccuracy, 10)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls, "second call must come from cache")

	// Different limit is a different cache entry.
	_, err = svc.Leaderboard(context.Background(), MetricAccuracy, 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestLeaderboardNilCacheDegrades(t *testing.T) {
	repo := &fakeRepo{board: []LeaderboardRow{{Rank: 1, EmployeeID: "EMP-001"}}}
	svc := NewService(repo, nil)

	board, err := svc.Leaderboard(context.Background(), MetricAccuracy, 10)
	require.NoError(t, err)
	require.Len(t, board, 1)

	_, err = svc.Leaderboard(context.Background(), MetricAccuracy, 10)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "without redis every call rebuilds")
}

func TestWarmLeaderboards(t *testing.T) {
	repo := &fakeRepo{board: []LeaderboardRow{{Rank: 1, EmployeeID: "EMP-003"}}}
	cache, mr := testCache(t)
	svc := NewService(repo, cache)

	require.NoError(t, svc.WarmLeaderboards(context.Background()))
	require.Equal(t, 2, repo.calls, "warmup rebuilds both metrics")
	require.True(t, mr.Exists(leaderboardKey(MetricAccuracy, 10)))
	require.True(t, mr.Exists(leaderboardKey(MetricEfficiency, 10)))

	_, err := svc.Leaderboard(context.Background(), MetricAccuracy, 10)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "request after warmup hits the cache")

	// Warming again invalidates stale entries first.
	require.NoError(t, svc.WarmLeaderboards(context.Background()))
	require.Equal(t, 4, repo.calls)
}

func TestPerformanceForBypassesCache(t *testing.T) {
	repo := &fakeRepo{performances: map[string]Performance{
		"abc": {EmployeeID: "EMP-001", TotalActions: 3, AverageAccuracyScore: 92.5},
	}}
	svc := NewService(repo, nil)

	perf, err := svc.PerformanceFor(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "EMP-001", perf.EmployeeID)
	require.Equal(t, 3, perf.TotalActions)
}
