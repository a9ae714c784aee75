// Package drawers manages the permanent drawer catalogue.
package drawers

import "time"

// Drawer is a fixed slot in a trolley that batches get loaded into.
type Drawer struct {
	ID         string    `json:"id"`
	DrawerCode string    `json:"drawer_code"`
	TrolleyID  string    `json:"trolley_id"`
	Position   int       `json:"position"`
	Capacity   int       `json:"capacity"`
	DrawerType string    `json:"drawer_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
