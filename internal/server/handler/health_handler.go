package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler returns a health handler. db may be nil, in which case
// the database check is reported as skipped.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports service liveness and database reachability.
// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "skipped"
	if h.db != nil {
		dbStatus = "ok"
		if err := h.db.PingContext(c.Context()); err != nil {
			dbStatus = "unreachable"
		}
	}

	status := fiber.StatusOK
	overall := "ok"
	if dbStatus == "unreachable" {
		status = fiber.StatusServiceUnavailable
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"service":  "authguard",
		"database": dbStatus,
	})
}
