// Package audit writes best-effort audit events for the authentication paths.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"authguard/internal/audit/domain"
	auditrepo "authguard/internal/audit/repository"
)

// Audit actions recorded by the auth code paths.
const (
	ActionLoginSuccess  = "login_success"
	ActionLoginFailure  = "login_failure"
	ActionAccountLocked = "account_locked"
	ActionRegister      = "register"
	ActionTokenRefresh  = "token_refresh"
	ActionLogout        = "logout"
	ActionLogoutAll     = "logout_all"
)

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo. repo may be nil;
// LogEvent is then a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s: %v", action, err)
	}
}
