package service

import (
	"context"
	"testing"
	"time"

	"authguard/internal/security"
	"authguard/internal/session/domain"
)

// fakeRepo is an in-memory session repository for tests.
type fakeRepo struct {
	sessions map[string]*domain.Session // keyed by refresh token hash
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.err != nil {
		return f.err
	}
	cp := *s
	f.sessions[s.RefreshTokenHash] = &cp
	return nil
}

func (f *fakeRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[hash]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) DeleteByRefreshTokenHash(ctx context.Context, hash string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.sessions[hash]; !ok {
		return 0, nil
	}
	delete(f.sessions, hash)
	return 1, nil
}

func (f *fakeRepo) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for hash, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeRepo) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	repo := newFakeRepo()
	return NewManager(repo, tokens, 7*24*time.Hour), repo
}

func TestManager_CreateSession(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, "u1", DeviceContext{DeviceInfo: "cli", IPAddress: "10.0.0.1", UserAgent: "curl"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("CreateSession returned empty tokens")
	}
	if len(pair.RefreshToken) != 128 {
		t.Errorf("refresh token length = %d, want 128 hex chars (64 bytes)", len(pair.RefreshToken))
	}

	hash := security.HashRefreshToken(pair.RefreshToken)
	sess, ok := repo.sessions[hash]
	if !ok {
		t.Fatal("session should be stored under the token hash, not the raw token")
	}
	if sess.UserID != "u1" || sess.DeviceInfo != "cli" || sess.IPAddress != "10.0.0.1" {
		t.Errorf("session fields = %+v", sess)
	}
	ttl := sess.ExpiresAt.Sub(sess.CreatedAt)
	if ttl != 7*24*time.Hour {
		t.Errorf("session TTL = %v, want 168h", ttl)
	}

	uid, err := m.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if uid != "u1" {
		t.Errorf("userID = %q, want u1", uid)
	}
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, "u1", DeviceContext{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	res, err := m.RefreshAccessToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}
	if res.AccessToken == "" || res.AccessExpiresAt.Before(time.Now()) {
		t.Fatal("refreshed access token empty or already expired")
	}
	if res.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", res.UserID)
	}
	uid, err := m.VerifyAccessToken(res.AccessToken)
	if err != nil || uid != "u1" {
		t.Fatalf("refreshed token should verify for u1: uid=%q err=%v", uid, err)
	}
}

func TestManager_RefreshAccessTokenUnknown(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.RefreshAccessToken(context.Background(), "no-such-token"); err != ErrRefreshTokenNotFound {
		t.Errorf("unknown refresh token: want ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestManager_RefreshAccessTokenExpiredSession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, "u1", DeviceContext{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// Well-formed, stored token, but the session's expiry has passed.
	m.nowF = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if _, err := m.RefreshAccessToken(ctx, pair.RefreshToken); err != ErrRefreshTokenNotFound {
		t.Errorf("expired session: want ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestManager_DeleteSessionIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.CreateSession(ctx, "u1", DeviceContext{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	deleted, err := m.DeleteSession(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if !deleted {
		t.Fatal("first delete should report true")
	}
	deleted, err = m.DeleteSession(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("DeleteSession again: %v", err)
	}
	if deleted {
		t.Fatal("second delete should report false")
	}
}

func TestManager_DeleteAllUserSessions(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.CreateSession(ctx, "u1", DeviceContext{}); err != nil {
			t.Fatalf("CreateSession u1: %v", err)
		}
	}
	otherPair, err := m.CreateSession(ctx, "u2", DeviceContext{})
	if err != nil {
		t.Fatalf("CreateSession u2: %v", err)
	}

	n, err := m.DeleteAllUserSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteAllUserSessions: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
	if _, ok := repo.sessions[security.HashRefreshToken(otherPair.RefreshToken)]; !ok {
		t.Error("other user's session must be untouched")
	}
}
