// Package history holds the append-only restock audit trail.
package history

import "time"

// ActionType classifies a restock action.
type ActionType string

const (
	ActionRestock    ActionType = "restock"
	ActionRemoval    ActionType = "removal"
	ActionAdjustment ActionType = "adjustment"
)

// ValidActionType reports whether t is a known action type.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionRestock, ActionRemoval, ActionAdjustment:
		return true
	}
	return false
}

// Record is one immutable audit entry. Employee, drawer and batch
// references are nullable so records outlive the entities they mention.
type Record struct {
	ID                    string     `json:"id"`
	EmployeeID            *string    `json:"employee_id"`
	DrawerID              *string    `json:"drawer_id"`
	BatchID               *string    `json:"batch_id"`
	ActionType            ActionType `json:"action_type"`
	QuantityChanged       int        `json:"quantity_changed"`
	RestockTimestamp      time.Time  `json:"restock_timestamp"`
	CompletionTimeSeconds *int       `json:"completion_time_seconds"`
	AccuracyScore         *float64   `json:"accuracy_score"`
	EfficiencyScore       *float64   `json:"efficiency_score"`
	Notes                 *string    `json:"notes"`
	BatchWarningTriggered bool       `json:"batch_warning_triggered"`
	CreatedAt             time.Time  `json:"created_at"`
}
