package user

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/models"
	"github.com/trove-app/trove-api/internal/utils"
)

// UserService handles profile and preference management.
type UserService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewUserService creates a new UserService.
func NewUserService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *UserService {
	return &UserService{cfg: cfg, pool: pool, jwtService: jwtService}
}

// GetProfile returns the authenticated user's profile.
func (s *UserService) GetProfile(c fiber.Ctx) error {
	userUUID, err := currentUser(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, s.pool, userUUID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "User not found")
		}
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Error retrieving profile")
	}

	return utils.Success(c, fiber.StatusOK, "Profile retrieved successfully", user)
}

type updateProfileRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Phone    *string          `json:"phone"`
	Location *models.Location `json:"location"`
}

// UpdateProfile updates the allowed profile fields of the authenticated
// user. Only name, email, phone and location may change here.
func (s *UserService) UpdateProfile(c fiber.Ctx) error {
	userUUID, err := currentUser(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, s.pool, userUUID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "User not found")
		}
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Error updating profile")
	}

	if req.Email != nil && *req.Email != user.Email {
		if !utils.IsValidEmail(*req.Email) {
			return utils.BadRequest(c, "Invalid email format")
		}
		var taken bool
		err = s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, *req.Email).Scan(&taken)
		if err != nil {
			log.Printf("error checking email: %v", err)
			return utils.ServerError(c, "Error updating profile")
		}
		if taken {
			return utils.BadRequest(c, "Email already in use")
		}
		user.Email = *req.Email
	}

	if req.Phone != nil {
		if *req.Phone != "" && !utils.IsValidPhone(*req.Phone) {
			return utils.BadRequest(c, "Invalid phone format")
		}
		user.Phone = *req.Phone
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}

	if req.Location != nil {
		if !utils.IsValidCoordinates(req.Location.Coordinates) {
			return utils.BadRequest(c, "Invalid coordinates")
		}
		user.Location = *req.Location
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, longitude = $4, latitude = $5, address = $6,
			updated_at = NOW()
		WHERE id = $7
	`, user.Name, user.Email, user.Phone,
		user.Location.Coordinates[0], user.Location.Coordinates[1], user.Location.Address, userUUID)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return utils.BadRequest(c, "Email already in use")
		}
		log.Printf("error updating profile: %v", err)
		return utils.ServerError(c, "Error updating profile")
	}

	return utils.Success(c, fiber.StatusOK, "Profile updated successfully", user)
}

type updatePreferencesRequest struct {
	Categories   *[]string          `json:"categories"`
	PriceRange   *models.PriceRange `json:"price_range"`
	SearchRadius *float64           `json:"search_radius"`
}

// UpdatePreferences merges the provided preference fields into the
// stored ones; omitted fields are left untouched.
func (s *UserService) UpdatePreferences(c fiber.Ctx) error {
	userUUID, err := currentUser(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req updatePreferencesRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByID(ctx, s.pool, userUUID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "User not found")
		}
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Error updating preferences")
	}

	if req.Categories != nil {
		user.Preferences.Categories = *req.Categories
	}
	if req.PriceRange != nil {
		if req.PriceRange.Min < 0 || req.PriceRange.Max < req.PriceRange.Min {
			return utils.BadRequest(c, "Invalid price range")
		}
		user.Preferences.PriceRange = *req.PriceRange
	}
	if req.SearchRadius != nil {
		if *req.SearchRadius <= 0 {
			return utils.BadRequest(c, "Search radius must be greater than zero")
		}
		user.Preferences.SearchRadius = *req.SearchRadius
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users
		SET pref_categories = $1, pref_price_min = $2, pref_price_max = $3, pref_search_radius = $4,
			updated_at = NOW()
		WHERE id = $5
	`, user.Preferences.Categories, user.Preferences.PriceRange.Min,
		user.Preferences.PriceRange.Max, user.Preferences.SearchRadius, userUUID)
	if err != nil {
		log.Printf("error updating preferences: %v", err)
		return utils.ServerError(c, "Error updating preferences")
	}

	return utils.Success(c, fiber.StatusOK, "Preferences updated successfully", user)
}

type updateUserTypeRequest struct {
	UserType string `json:"user_type"`
}

// UpdateUserType switches the account between buyer, seller and both.
func (s *UserService) UpdateUserType(c fiber.Ctx) error {
	userUUID, err := currentUser(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req updateUserTypeRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if !models.ValidUserType(req.UserType) {
		return utils.BadRequest(c, "Invalid user type")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET user_type = $1, updated_at = NOW() WHERE id = $2
	`, req.UserType, userUUID)
	if err != nil {
		log.Printf("error updating user type: %v", err)
		return utils.ServerError(c, "Error updating user type")
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFound(c, "User not found")
	}

	user, err := db.GetUserByID(ctx, s.pool, userUUID)
	if err != nil {
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Error updating user type")
	}

	return utils.Success(c, fiber.StatusOK, "User type updated successfully", user)
}

type updateSubscriptionRequest struct {
	SubscriptionStatus string     `json:"subscription_status"`
	ExpiryDate         *time.Time `json:"expiry_date"`
}

// UpdateSubscription switches the subscription tier. Downgrading to
// free clears the expiry date unless one was supplied.
func (s *UserService) UpdateSubscription(c fiber.Ctx) error {
	userUUID, err := currentUser(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req updateSubscriptionRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if !models.ValidSubscriptionStatus(req.SubscriptionStatus) {
		return utils.BadRequest(c, "Invalid subscription status")
	}

	expiry := req.ExpiryDate
	if expiry == nil && req.SubscriptionStatus == models.SubscriptionPremium {
		return utils.BadRequest(c, "Expiry date is required for premium subscriptions")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET subscription_status = $1, subscription_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`, req.SubscriptionStatus, expiry, userUUID)
	if err != nil {
		log.Printf("error updating subscription: %v", err)
		return utils.ServerError(c, "Error updating subscription")
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFound(c, "User not found")
	}

	user, err := db.GetUserByID(ctx, s.pool, userUUID)
	if err != nil {
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Error updating subscription")
	}

	return utils.Success(c, fiber.StatusOK, "Subscription updated successfully", user)
}

func currentUser(c fiber.Ctx) (uuid.UUID, error) {
	userID, _ := c.Locals("userID").(string)
	return uuid.Parse(userID)
}
