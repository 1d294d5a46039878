package favorite

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the saved-listing routes.
func (s *FavoriteService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/favorites")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetSavedListings)
	api.Post("/", s.SaveListing)
	api.Delete("/:id", s.UnsaveListing)
	api.Get("/:id/check", s.CheckSaved)
}
