// Package handler implements the HTTP handlers and route registration for
// the auth service.
package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	identityservice "authguard/internal/identity/service"
	"authguard/internal/observability"
	"authguard/internal/server/middleware"
	sessionservice "authguard/internal/session/service"
)

type AuthHandler struct {
	auth    *identityservice.AuthService
	metrics *observability.AuthMetrics
}

func NewAuthHandler(auth *identityservice.AuthService, metrics *observability.AuthMetrics) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func deviceContext(c *fiber.Ctx) sessionservice.DeviceContext {
	return sessionservice.DeviceContext{
		DeviceInfo: c.Get("X-Device-Info"),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
}

// Register handles account creation.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	pair, userID, err := h.auth.Register(c.Context(), req.Email, req.Password, deviceContext(c))
	if err != nil {
		if errors.Is(err, identityservice.ErrEmailAlreadyRegistered) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "email already registered",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(tokenResponse(pair, userID))
}

// Login handles credential login.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	pair, userID, err := h.auth.Login(c.Context(), req.Email, req.Password, deviceContext(c))
	if err != nil {
		var locked *identityservice.AccountLockedError
		if errors.As(err, &locked) {
			h.metrics.RecordLogin(c.Context(), "locked")
			h.metrics.RecordLockout(c.Context())
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"error":               "account temporarily locked",
				"retry_after_seconds": int64(locked.RetryAfter.Seconds()),
			})
		}
		if errors.Is(err, identityservice.ErrInvalidCredentials) {
			h.metrics.RecordLogin(c.Context(), "failure")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}
		log.Printf("login: %v", err)
		return internalError(c)
	}

	h.metrics.RecordLogin(c.Context(), "success")
	return c.Status(fiber.StatusOK).JSON(tokenResponse(pair, userID))
}

// Refresh exchanges a refresh token for a new access token.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	res, err := h.auth.Refresh(c.Context(), req.RefreshToken, c.IP())
	if err != nil {
		if errors.Is(err, sessionservice.ErrRefreshTokenNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired refresh token",
			})
		}
		log.Printf("refresh: %v", err)
		return internalError(c)
	}

	h.metrics.RecordTokenRefresh(c.Context())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": res.AccessToken,
		"expires_at":   res.AccessExpiresAt,
	})
}

// Logout revokes the session for the given refresh token. Succeeds whether
// or not the session still exists.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if _, err := h.auth.Logout(c.Context(), req.RefreshToken, middleware.UserID(c), c.IP()); err != nil {
		log.Printf("logout: %v", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "logged out",
	})
}

// LogoutAll revokes every session of the authenticated user.
// POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	n, err := h.auth.LogoutAll(c.Context(), userID, c.IP())
	if err != nil {
		log.Printf("logout-all: %v", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":          "logged out everywhere",
		"sessions_revoked": n,
	})
}

func tokenResponse(pair *sessionservice.TokenPair, userID string) fiber.Map {
	return fiber.Map{
		"user_id":       userID,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExpiresAt,
	}
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
