package service

import (
	"context"

	"authguard/internal/identity/repository"
	"authguard/internal/rbac"
)

// RoleResolver looks up a user's role from storage. Users with no stored
// role, and user IDs with no row at all, resolve to member.
type RoleResolver struct {
	users repository.Repository
}

func NewRoleResolver(users repository.Repository) *RoleResolver {
	return &RoleResolver{users: users}
}

var _ rbac.Resolver = (*RoleResolver)(nil)

func (r *RoleResolver) RoleOf(ctx context.Context, userID string) (rbac.Role, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return rbac.RoleMember, nil
	}
	return rbac.ParseRole(user.Role), nil
}
