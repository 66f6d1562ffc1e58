package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"authguard/internal/observability"
	"authguard/internal/ratelimit"
)

// RateLimit enforces limiter for every request except exemptPath (the health
// check). Requests are keyed by the authenticated user when available, by
// client IP otherwise. Limit, remaining, and reset are surfaced as headers on
// every response so clients can back off before hitting the budget.
func RateLimit(limiter *ratelimit.Limiter, scope, exemptPath string, metrics *observability.AuthMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == exemptPath {
			return c.Next()
		}

		key := c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = userID
		}

		d := limiter.Allow(key)
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retrySecs := int64(d.RetryAfter.Seconds())
			c.Set("Retry-After", strconv.FormatInt(retrySecs, 10))
			metrics.RecordRateLimited(c.Context(), scope)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":               "too many requests",
				"retry_after_seconds": retrySecs,
			})
		}
		return c.Next()
	}
}
