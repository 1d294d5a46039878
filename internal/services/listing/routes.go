package listing

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the listing routes. Browsing is public;
// everything that mutates requires a seller account.
func (s *ListingService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/listings")

	api.Get("/", s.GetListings)
	api.Get("/:id", s.GetListingByID)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Use(middleware.RequireSeller(s.pool))

	protected.Post("/", s.CreateListing)
	protected.Get("/merchant/listings", s.GetMerchantListings)
	protected.Put("/:id", s.UpdateListing)
	protected.Delete("/:id", s.DeleteListing)
	protected.Patch("/:id/status", s.UpdateListingStatus)
	protected.Patch("/:id/feature", s.FeatureListing)
}
