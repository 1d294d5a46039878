package merchant

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the merchant dashboard routes. All of them
// require an authenticated seller.
func (s *MerchantService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/merchant")
	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Use(middleware.RequireSeller(s.pool))

	api.Get("/dashboard", s.GetDashboardSummary)
	api.Get("/analytics/inventory", s.GetInventoryAnalytics)
	api.Get("/analytics/offers", s.GetOfferAnalytics)
}
