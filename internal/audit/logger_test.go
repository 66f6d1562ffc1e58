package audit

import (
	"context"
	"errors"
	"testing"

	"authguard/internal/audit/domain"
)

type fakeRepo struct {
	entries []*domain.AuditLog
	err     error
}

func (r *fakeRepo) Create(_ context.Context, a *domain.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return r.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &fakeRepo{}
	l := NewLogger(repo)

	l.LogEvent(context.Background(), "u1", ActionLoginSuccess, "10.0.0.1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry should have an ID")
	}
	if e.UserID != "u1" || e.Action != ActionLoginSuccess || e.IP != "10.0.0.1" {
		t.Errorf("entry = %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogger_BestEffortOnRepoError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	l := NewLogger(repo)

	// Must not panic or surface the error.
	l.LogEvent(context.Background(), "u1", ActionLoginFailure, "", "")
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "u1", ActionLogout, "", "")

	NewLogger(nil).LogEvent(context.Background(), "u1", ActionLogout, "", "")
}
