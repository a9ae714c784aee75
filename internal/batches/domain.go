// Package batches manages item batch intake and lifecycle.
package batches

import "time"

// BatchStatus is the lifecycle state of an item batch.
type BatchStatus string

const (
	StatusAvailable BatchStatus = "available"
	StatusInUse     BatchStatus = "in_use"
	StatusDepleted  BatchStatus = "depleted"
)

// ValidStatus reports whether s is a known batch status.
func ValidStatus(s BatchStatus) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusDepleted:
		return true
	}
	return false
}

// ItemBatch is one received batch of a catering item.
type ItemBatch struct {
	ID           string      `json:"id"`
	ItemType     string      `json:"item_type"`
	BatchNumber  string      `json:"batch_number"`
	Quantity     int         `json:"quantity"`
	ExpiryDate   time.Time   `json:"expiry_date"`
	ReceivedDate time.Time   `json:"received_date"`
	Status       BatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ListFilters narrows batch listings.
type ListFilters struct {
	Status   *BatchStatus
	ItemType string
}
