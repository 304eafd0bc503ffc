package model

import "time"

// WebhookEvent is one entry of the reconciliation audit trail. The in-process
// ring buffer holds the most recent entries for fast operator inspection; the
// same rows are persisted to the webhook_events table and rotated by a
// scheduler. The trail is diagnostic only, the tickets table is authoritative.
type WebhookEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Ts            time.Time `gorm:"index" json:"ts"`
	Kind          string    `gorm:"size:20" json:"kind"` // received | process | gate_failure | mark_paid | error
	Channel       string    `gorm:"size:20" json:"channel"`
	Status        string    `gorm:"size:40" json:"status"`
	Amount        string    `gorm:"size:20" json:"amount"`
	Reference     string    `gorm:"size:64;index" json:"reference"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Quantity      int       `json:"quantity"`
	ExistingCount int       `json:"existingCount"`
	Note          string    `gorm:"size:255" json:"note"`
}
