// Package evaluation aggregates restock history into employee
// performance metrics and rankings.
package evaluation

// Metric names a score column employees can be ranked by.
type Metric string

const (
	MetricAccuracy   Metric = "accuracy_score"
	MetricEfficiency Metric = "efficiency_score"
)

// ValidMetric reports whether m is a rankable metric.
func ValidMetric(m Metric) bool {
	return m == MetricAccuracy || m == MetricEfficiency
}

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Performance is one employee's aggregated restock metrics. An employee
// with no history reports zeros rather than nulls.
type Performance struct {
	EmployeeID                   string  `json:"employee_id"`
	EmployeeName                 string  `json:"employee_name"`
	TotalActions                 int     `json:"total_actions"`
	AverageAccuracyScore         float64 `json:"average_accuracy_score"`
	AverageEfficiencyScore       float64 `json:"average_efficiency_score"`
	WarningsTriggered            int     `json:"warnings_triggered"`
	AverageCompletionTimeSeconds float64 `json:"average_completion_time_seconds"`
}

// LeaderboardRow is one ranked leaderboard position.
type LeaderboardRow struct {
	Rank         int     `json:"rank"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	TotalActions int     `json:"total_actions"`
	AverageScore float64 `json:"average_score"`
}
