// Package service implements the token/session manager: short-lived signed
// access tokens, long-lived opaque refresh tokens, and session revocation.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"authguard/internal/security"
	"authguard/internal/session/domain"
	"authguard/internal/session/repository"
)

// ErrRefreshTokenNotFound is returned when a refresh token matches no session
// or the session has expired. Callers map it to a 401.
var ErrRefreshTokenNotFound = errors.New("refresh token not found or session expired")

// TokenPair is what a successful login or session creation returns.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

// DeviceContext carries optional request metadata recorded on the session.
type DeviceContext struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

// Manager issues access tokens, creates sessions, and revokes them. Access
// tokens are self-verifying (no store round trip per request); refresh tokens
// are opaque, store-backed, and individually revocable, which bounds the
// blast radius of a leaked access token to its TTL.
type Manager struct {
	repo       repository.Repository
	tokens     *security.TokenProvider
	sessionTTL time.Duration
	nowF       func() time.Time
}

// NewManager returns a Manager persisting sessions for sessionTTL (7 days in
// the default configuration).
func NewManager(repo repository.Repository, tokens *security.TokenProvider, sessionTTL time.Duration) *Manager {
	return &Manager{
		repo:       repo,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		nowF:       time.Now,
	}
}

// CreateSession mints a refresh token, persists the session, and returns the
// token pair. Called on successful login and registration.
func (m *Manager) CreateSession(ctx context.Context, userID string, dc DeviceContext) (*TokenPair, error) {
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := m.nowF().UTC()
	sess := &domain.Session{
		ID:               uuid.New().String(),
		UserID:           userID,
		RefreshTokenHash: security.HashRefreshToken(refresh),
		DeviceInfo:       dc.DeviceInfo,
		IPAddress:        dc.IPAddress,
		UserAgent:        dc.UserAgent,
		ExpiresAt:        now.Add(m.sessionTTL),
		CreatedAt:        now,
	}
	if err := m.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	access, accessExp, err := m.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:     access,
		AccessExpiresAt: accessExp,
		RefreshToken:    refresh,
	}, nil
}

// VerifyAccessToken validates the token's signature, expiry, and type and
// returns the user ID. Stateless; no store access.
func (m *Manager) VerifyAccessToken(token string) (string, error) {
	return m.tokens.ValidateAccess(token)
}

// RefreshResult is the outcome of a successful token refresh.
type RefreshResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
	UserID          string
}

// RefreshAccessToken exchanges a refresh token for a new access token bound
// to the session's user. Fails with ErrRefreshTokenNotFound when the token
// matches no session or the session has expired. The refresh token is not
// rotated; a session keeps its token for its whole lifetime.
func (m *Manager) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	sess, err := m.repo.GetByRefreshTokenHash(ctx, security.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Active(m.nowF()) {
		return nil, ErrRefreshTokenNotFound
	}
	access, exp, err := m.tokens.IssueAccess(sess.UserID)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{AccessToken: access, AccessExpiresAt: exp, UserID: sess.UserID}, nil
}

// DeleteSession revokes the session matching the refresh token. Returns
// whether a session was deleted; deleting an unknown token is not an error.
func (m *Manager) DeleteSession(ctx context.Context, refreshToken string) (bool, error) {
	n, err := m.repo.DeleteByRefreshTokenHash(ctx, security.HashRefreshToken(refreshToken))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllUserSessions revokes every session for the user (logout-all) and
// returns the count deleted.
func (m *Manager) DeleteAllUserSessions(ctx context.Context, userID string) (int64, error) {
	return m.repo.DeleteAllByUser(ctx, userID)
}

// ListUserSessions returns the user's sessions, newest first.
func (m *Manager) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	return m.repo.ListByUser(ctx, userID)
}
