package message

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trove-app/trove-api/internal/middleware"
)

// SetupRoutes registers the messaging routes. Everything here requires
// authentication.
func (s *MessageService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/messages")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/conversations", s.GetOrCreateConversation)
	api.Get("/conversations", s.GetUserConversations)
	api.Get("/conversations/:id/messages", s.GetConversationMessages)
	api.Delete("/conversations/:id", s.DeleteConversation)
	api.Post("/messages", s.SendMessage)
	api.Patch("/messages/:id/read", s.MarkMessageAsRead)
}
