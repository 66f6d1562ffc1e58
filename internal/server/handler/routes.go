package handler

import (
	"github.com/gofiber/fiber/v2"

	"authguard/internal/rbac"
	"authguard/internal/server/middleware"
)

// SetupRoutes wires every route with its middleware chain. The health check
// is exempt from rate limiting; credential endpoints get the strict auth
// limiter keyed by IP; authenticated endpoints get the API limiter keyed by
// user (so the auth middleware runs first).
func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	sessionHandler *SessionHandler,
	auditHandler *AuditHandler,
	healthHandler *HealthHandler,
	authMiddleware fiber.Handler,
	authLimit fiber.Handler,
	apiLimit fiber.Handler,
	resolver rbac.Resolver,
) {
	app.Use(middleware.Recovery())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS())

	app.Get("/health", healthHandler.Health)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authLimit, authHandler.Register)
	auth.Post("/login", authLimit, authHandler.Login)
	auth.Post("/refresh", authLimit, authHandler.Refresh)
	auth.Post("/logout", authMiddleware, apiLimit, authHandler.Logout)
	auth.Post("/logout-all", authMiddleware, apiLimit, authHandler.LogoutAll)

	sessions := api.Group("/sessions", authMiddleware, apiLimit)
	sessions.Get("/", sessionHandler.List)

	admin := api.Group("/admin", authMiddleware, apiLimit,
		middleware.RequireRole(resolver, rbac.RoleModerator, rbac.RoleAdmin))
	admin.Get("/audit/:userId", auditHandler.ListByUser)
}
