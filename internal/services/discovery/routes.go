package discovery

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the discovery feed routes.
func (s *DiscoveryService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/discovery")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetDiscoveryListings)
	api.Post("/interaction", s.RecordSwipeInteraction)
}
