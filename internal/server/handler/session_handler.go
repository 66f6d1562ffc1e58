package handler

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"authguard/internal/server/middleware"
	sessionservice "authguard/internal/session/service"
)

type SessionHandler struct {
	sessions *sessionservice.Manager
}

func NewSessionHandler(sessions *sessionservice.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionView struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// List returns the caller's sessions, newest first. Token hashes are never
// included in the response.
// GET /api/v1/sessions
func (h *SessionHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	sessions, err := h.sessions.ListUserSessions(c.Context(), userID)
	if err != nil {
		log.Printf("list sessions: %v", err)
		return internalError(c)
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			ID:         s.ID,
			DeviceInfo: s.DeviceInfo,
			IPAddress:  s.IPAddress,
			UserAgent:  s.UserAgent,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessions": views,
	})
}
