// Package employees manages the galley crew roster.
package employees

import "time"

// Status is the employment state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ValidStatus reports whether s is a known employee status.
func ValidStatus(s Status) bool {
	return s == StatusActive || s == StatusInactive
}

// Employee is one crew member who performs restock actions.
type Employee struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
