package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// Repository runs the aggregation queries against Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PerformanceFor aggregates one employee's history. COALESCE folds the
// no-records and all-null-scores cases down to zeros.
func (r *Repository) PerformanceFor(ctx context.Context, employeeID string) (Performance, error) {
	var perf Performance
	err := r.pool.QueryRow(ctx, `
		SELECT employee_id, first_name || ' ' || last_name FROM employees WHERE id = $1`,
		employeeID).Scan(&perf.EmployeeID, &perf.EmployeeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Performance{}, fmt.Errorf("%w: employee %s not found", shared.ErrNotFound, employeeID)
	}
	if err != nil {
		return Performance{}, fmt.Errorf("get employee: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(id),
			COALESCE(AVG(accuracy_score), 0),
			COALESCE(AVG(efficiency_score), 0),
			COALESCE(SUM(CASE WHEN batch_warning_triggered THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(completion_time_seconds), 0)
		FROM restock_history
		WHERE employee_id = $1`,
		employeeID).Scan(&perf.TotalActions, &perf.AverageAccuracyScore,
		&perf.AverageEfficiencyScore, &perf.WarningsTriggered, &perf.AverageCompletionTimeSeconds)
	if err != nil {
		return Performance{}, fmt.Errorf("aggregate performance: %w", err)
	}
	return perf, nil
}

// Leaderboard ranks active employees with at least one record by their
// average score. Ties break on ascending employee code so the ordering
// is deterministic.
func (r *Repository) Leaderboard(ctx context.Context, metric Metric, limit int) ([]LeaderboardRow, error) {
	var column string
	switch metric {
	case MetricAccuracy:
		column = "accuracy_score"
	case MetricEfficiency:
		column = "efficiency_score"
	default:
		return nil, fmt.Errorf("%w: metric must be accuracy_score or efficiency_score", shared.ErrValidation)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT e.employee_id, e.first_name || ' ' || e.last_name,
			COUNT(rh.id), COALESCE(AVG(rh.`+column+`), 0) AS avg_score
		FROM employees e
		JOIN restock_history rh ON rh.employee_id = e.id
		WHERE e.status = 'active'
		GROUP BY e.id, e.employee_id, e.first_name, e.last_name
		ORDER BY avg_score DESC, e.employee_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	board := []LeaderboardRow{}
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.TotalActions, &row.AverageScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		row.Rank = len(board) + 1
		board = append(board, row)
	}
	return board, rows.Err()
}
