// Package tracking implements the batch ledger: per-drawer load entries,
// stacking detection, depletion, and the append-only restock audit trail.
package tracking

import (
	"fmt"
	"time"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// DrawerState enumerates aggregate drawer status values.
type DrawerState string

const (
	DrawerStateEmpty        DrawerState = "empty"
	DrawerStatePartial      DrawerState = "partial"
	DrawerStateFull         DrawerState = "full"
	DrawerStateNeedsRestock DrawerState = "needs_restock"
)

// ValidDrawerState reports whether s is a known drawer state.
func ValidDrawerState(s DrawerState) bool {
	switch s {
	case DrawerStateEmpty, DrawerStatePartial, DrawerStateFull, DrawerStateNeedsRestock:
		return true
	}
	return false
}

// StatusSnapshot is the single evolving status row kept per drawer.
// New load actions refresh it in place rather than inserting siblings.
type StatusSnapshot struct {
	ID          string      `json:"id"`
	DrawerID    string      `json:"drawer_id"`
	Status      DrawerState `json:"status"`
	LastUpdated time.Time   `json:"last_updated"`
	CreatedAt   time.Time   `json:"created_at"`
}

// LedgerEntry records one batch-load event in a drawer. batch_order is
// strictly increasing within the drawer's ledger, starting at 1. The
// depletion flag is a one-way transition.
type LedgerEntry struct {
	ID             string     `json:"id"`
	DrawerID       string     `json:"drawer_id"`
	BatchID        string     `json:"batch_id"`
	QuantityLoaded int        `json:"quantity_loaded"`
	LoadDate       time.Time  `json:"load_date"`
	IsDepleted     bool       `json:"is_depleted"`
	DepletionDate  *time.Time `json:"depletion_date"`
	BatchOrder     int        `json:"batch_order"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ExistingBatch describes a non-depleted batch reported in a stacking warning.
type ExistingBatch struct {
	BatchNumber    string    `json:"batch_number"`
	ItemType       string    `json:"item_type"`
	QuantityLoaded int       `json:"quantity_loaded"`
	LoadDate       time.Time `json:"load_date"`
}

// Warning is the advisory payload attached to a load action that stacked
// on top of undepleted batches. It never blocks the write.
type Warning struct {
	Code            string          `json:"code"`
	Message         string          `json:"message"`
	ExistingBatches []ExistingBatch `json:"existing_batches"`
}

// WarningCodeStacking is the only warning code the recorder emits.
const WarningCodeStacking = "BATCH_STACKING_DETECTED"

func newStackingWarning(existing []ExistingBatch) *Warning {
	return &Warning{
		Code:            WarningCodeStacking,
		Message:         fmt.Sprintf("%d batch(es) already loaded without depletion", len(existing)),
		ExistingBatches: existing,
	}
}

// ActionType enumerates audit trail action types.
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

// AuditRecord is one immutable row of the restock audit trail.
type AuditRecord struct {
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

// BatchRef is the slice of an item batch the ledger needs: identity,
// total quantity for the depletion cascade, and display fields.
type BatchRef struct {
	ID          string
	BatchNumber string
	ItemType    string
	Quantity    int
	Depleted    bool
}

// RecordInput describes one inventory load action.
type RecordInput struct {
	DrawerID   string
	BatchID    string
	Quantity   int
	Status     DrawerState
	EmployeeID *string
}

// Validate checks the input before any mutation happens.
func (in RecordInput) Validate() error {
	if in.DrawerID == "" {
		return fmt.Errorf("%w: drawer_id is required", shared.ErrValidation)
	}
	if in.BatchID == "" {
		return fmt.Errorf("%w: batch_id is required", shared.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", shared.ErrValidation)
	}
	if !ValidDrawerState(in.Status) {
		return fmt.Errorf("%w: status must be one of empty, partial, full, needs_restock", shared.ErrValidation)
	}
	return nil
}
