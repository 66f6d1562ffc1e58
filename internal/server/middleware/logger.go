// Package middleware holds the fiber middleware chain: request logging,
// panic recovery, CORS, rate limiting, token auth, and role checks.
package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs each request with method, path, status, and latency.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.Printf("[%s] %s - %d in %v",
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
		)
		return err
	}
}
