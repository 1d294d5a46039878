package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/utils"
)

// AuthMiddleware verifies the bearer access token and stores the
// authenticated user id in the request locals.
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Unauthorized(c, "Access denied. No token provided.")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return utils.Unauthorized(c, "Invalid authorization header format")
		}

		userID, err := jwtService.ExtractUserID(parts[1])
		if err != nil {
			return utils.Unauthorized(c, "Invalid or expired token")
		}

		if _, err = uuid.Parse(userID); err != nil {
			return utils.Unauthorized(c, "Invalid user ID")
		}

		c.Locals("userID", userID)

		return c.Next()
	}
}

// RequireSeller gates merchant-only routes. It must run after
// AuthMiddleware; the account's type is looked up fresh so a role
// change takes effect immediately.
func RequireSeller(pool *pgxpool.Pool) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, _ := c.Locals("userID").(string)
		if userID == "" {
			return utils.Unauthorized(c, "User is not authenticated")
		}

		ctx, cancel := db.GetContext()
		defer cancel()

		var userType string
		err := pool.QueryRow(ctx, `SELECT user_type FROM users WHERE id = $1`, userID).Scan(&userType)
		if err != nil {
			if utils.IsNoRows(err) {
				return utils.Unauthorized(c, "User not found. Authentication failed.")
			}
			return utils.ServerError(c, "Error checking user role")
		}

		if userType != "seller" && userType != "both" {
			return utils.Forbidden(c, "Access denied. Seller privileges required.")
		}

		return c.Next()
	}
}
