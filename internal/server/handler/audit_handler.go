package handler

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"authguard/internal/audit/repository"
)

type AuditHandler struct {
	repo repository.Repository
}

func NewAuditHandler(repo repository.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListByUser returns audit entries for a user, newest first. Moderator and
// admin only; route-level role checks enforce that.
// GET /api/v1/admin/audit/:userId
func (h *AuditHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user id is required",
		})
	}

	limit := int32(50)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 || n > 500 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be between 1 and 500",
			})
		}
		limit = int32(n)
	}
	offset := int32(0)
	if v := c.Query("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "offset must be non-negative",
			})
		}
		offset = int32(n)
	}

	entries, err := h.repo.ListByUser(c.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("list audit logs: %v", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"entries": entries,
	})
}
