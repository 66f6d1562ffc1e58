// Package repository persists users and resolves their roles.
package repository

import (
	"context"

	"authguard/internal/identity/domain"
)

// Repository is the minimal user store needed by the auth service and the
// role resolver.
type Repository interface {
	// GetByEmail returns the user for the lower-cased email, or nil if not found.
	// It returns an error only for database failures, not for missing rows.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists the user. The user must have ID set.
	Create(ctx context.Context, u *domain.User) error
}
