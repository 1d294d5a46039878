package offer

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the offer negotiation routes. Everything here
// requires authentication.
func (s *OfferService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/offers")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateOffer)
	api.Get("/buyer/offers", s.GetBuyerOffers)
	api.Get("/seller/offers", s.GetSellerOffers, middleware.RequireSeller(s.pool))
	api.Get("/listing/:listingId", s.GetListingOffers, middleware.RequireSeller(s.pool))
	api.Get("/:id", s.GetOfferByID)
	api.Patch("/:id/status", s.UpdateOfferStatus)
	api.Post("/:id/counter", s.CounterOffer)
}
