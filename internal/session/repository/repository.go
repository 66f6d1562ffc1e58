// Package repository persists sessions. The durable store is shared across
// instances, unlike the in-process lockout and rate-limit state.
package repository

import (
	"context"

	"authguard/internal/session/domain"
)

// Repository is the durable session store consumed by the session manager.
type Repository interface {
	// Create persists the session. The session must have ID set.
	Create(ctx context.Context, s *domain.Session) error
	// GetByRefreshTokenHash returns the session whose stored hash matches, or nil if not found.
	// It returns an error only for database failures, not for missing rows.
	GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	// DeleteByRefreshTokenHash deletes the matching session and returns how many rows were removed (0 or 1).
	DeleteByRefreshTokenHash(ctx context.Context, hash string) (int64, error)
	// DeleteAllByUser deletes every session for the user and returns the count removed.
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
	// ListByUser returns all sessions for the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
