package middleware

import (
	"github.com/gofiber/fiber/v2"

	"authguard/internal/rbac"
)

// RequireRole verifies that the authenticated user's role clears the lowest
// level in allowed. Must run after Auth.
func RequireRole(resolver rbac.Resolver, allowed ...rbac.Role) fiber.Handler {
	required := make([]string, len(allowed))
	for i, r := range allowed {
		required[i] = string(r)
	}
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return unauthorized(c)
		}

		role, err := resolver.RoleOf(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve role",
			})
		}

		if !rbac.Allowed(role, allowed...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          "insufficient permissions",
				"required_roles": required,
				"your_role":      string(role),
			})
		}
		return c.Next()
	}
}
