package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers profile routes. All of them require a valid
// access token.
func (s *UserService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/profile", s.GetProfile)
	api.Put("/profile", s.UpdateProfile)
	api.Put("/preferences", s.UpdatePreferences)
	api.Put("/type", s.UpdateUserType)
	api.Put("/subscription", s.UpdateSubscription)
}
