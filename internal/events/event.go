// Package events publishes security events (failed logins, lockout trips,
// revocations) to Kafka for downstream alerting. Emission is best-effort and
// never blocks or fails the request path.
package events

import (
	"context"
	"time"
)

// Event types published on the security stream.
const (
	TypeLoginFailure   = "login_failure"
	TypeAccountLocked  = "account_locked"
	TypeSessionRevoked = "session_revoked"
)

// Event is one security event. Identifier is the attempted login identifier
// (lower-cased email); UserID is set only when the account is known and the
// event is not enumeration-sensitive.
type Event struct {
	Type       string    `json:"type"`
	Identifier string    `json:"identifier,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	IP         string    `json:"ip,omitempty"`
	At         time.Time `json:"at"`
}

// Emitter publishes security events. Callers use it best-effort: log and ignore errors.
type Emitter interface {
	// Emit sends a single event. Implementations may block briefly; use EmitAsync from request paths.
	Emit(ctx context.Context, event *Event) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if already closed.
	Close() error
}
