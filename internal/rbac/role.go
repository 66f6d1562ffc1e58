// Package rbac defines the role hierarchy and the authorization gate for
// protected operations.
package rbac

import (
	"context"
	"strings"
)

// Role is a named position in the hierarchy.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// levels is the process-wide static ordering; never mutated at runtime.
var levels = map[Role]int{
	RoleGuest:     1,
	RoleMember:    2,
	RoleModerator: 3,
	RoleAdmin:     4,
}

// Level returns the hierarchy level of r, or 0 for an unknown role.
func (r Role) Level() int {
	return levels[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := levels[r]
	return ok
}

// ParseRole maps a stored role string to a Role. Unknown or missing values
// resolve to member: a caller without role metadata is an ordinary
// authenticated user, not an unauthenticated guest.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleMember
	}
	return r
}

// Resolver looks up a user's role. Implementations default to member when
// the user has no role metadata.
type Resolver interface {
	RoleOf(ctx context.Context, userID string) (Role, error)
}
