package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	sessionservice "authguard/internal/session/service"
)

// Auth validates the Bearer access token and stores the user ID in
// fiber.Locals for downstream handlers. Expired, malformed, and missing
// tokens all get the same 401 shape.
func Auth(sessions *sessionservice.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c)
		}

		userID, err := sessions.VerifyAccessToken(parts[1])
		if err != nil {
			return unauthorized(c)
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "invalid or expired token",
	})
}

// UserID returns the authenticated user ID stored by Auth, or "" if absent.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
