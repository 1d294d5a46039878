package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the auth routes.
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/register", s.Register)
	api.Post("/login", s.Login)
	api.Post("/refresh-token", s.RefreshToken)
	api.Post("/password-reset/request", s.RequestPasswordReset)
	api.Post("/password-reset/reset", s.ResetPassword)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Post("/password-change", s.ChangePassword)
}
