package domain

import "time"

// AuditLog represents one authentication audit event.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	IP        string    `db:"ip" json:"ip"`
	Metadata  string    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
