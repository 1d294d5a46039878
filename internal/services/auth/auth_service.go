package auth

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

// AuthService handles registration, login and password management.
type AuthService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, pool *pgxpool.Pool) *AuthService {
	return &AuthService{
		cfg:  cfg,
		pool: pool,
		jwtService: utils.NewJWTService(
			cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
	}
}

// GetJWTService exposes the token service for middleware wiring.
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

type registerRequest struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Name     string           `json:"name"`
	Phone    string           `json:"phone"`
	UserType string           `json:"user_type"`
	Location *models.Location `json:"location"`
}

// Register creates a new account and returns a token pair.
func (s *AuthService) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if !utils.IsValidEmail(req.Email) {
		return utils.BadRequest(c, "Invalid email format")
	}
	if len(req.Password) < 6 {
		return utils.BadRequest(c, "Password must be at least 6 characters")
	}
	if req.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}
	if req.Phone != "" && !utils.IsValidPhone(req.Phone) {
		return utils.BadRequest(c, "Invalid phone format")
	}
	userType := models.NormalizeUserType(req.UserType)
	if !models.ValidUserType(userType) {
		return utils.BadRequest(c, "Invalid user type")
	}

	lng, lat := 0.0, 0.0
	address := ""
	if req.Location != nil {
		if !utils.IsValidCoordinates(req.Location.Coordinates) {
			return utils.BadRequest(c, "Invalid coordinates")
		}
		lng, lat = req.Location.Coordinates[0], req.Location.Coordinates[1]
		address = req.Location.Address
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return utils.ServerError(c, "Registration failed")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	userID := uuid.New()
	prefs := models.DefaultPreferences()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, phone, longitude, latitude, address,
			user_type, pref_categories, pref_price_min, pref_price_max, pref_search_radius)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, userID, req.Email, passwordHash, req.Name, req.Phone, lng, lat, address,
		userType, prefs.Categories, prefs.PriceRange.Min, prefs.PriceRange.Max, prefs.SearchRadius)

	if err != nil {
		if utils.IsUniqueViolation(err) {
			return utils.BadRequest(c, "Email already registered")
		}
		log.Printf("error inserting user: %v", err)
		return utils.ServerError(c, "Registration failed")
	}

	user, err := db.GetUserByID(ctx, s.pool, userID)
	if err != nil {
		log.Printf("error loading created user: %v", err)
		return utils.ServerError(c, "Registration failed")
	}

	accessToken, refreshToken, err := s.tokenPair(userID.String())
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return utils.ServerError(c, "Registration failed")
	}

	return utils.Success(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a fresh token pair.
func (s *AuthService) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByEmail(ctx, s.pool, req.Email)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.BadRequest(c, "Invalid email or password")
		}
		log.Printf("error fetching user by email: %v", err)
		return utils.ServerError(c, "Login failed")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return utils.BadRequest(c, "Invalid email or password")
	}

	now := time.Now()
	if _, err = s.pool.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, now, user.ID); err != nil {
		log.Printf("error updating last login: %v", err)
	}
	user.LastLogin = &now

	accessToken, refreshToken, err := s.tokenPair(user.ID.String())
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return utils.ServerError(c, "Login failed")
	}

	return utils.Success(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *AuthService) RefreshToken(c fiber.Ctx) error {
	var req refreshRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return utils.BadRequest(c, "Refresh token is required")
	}

	userID, err := s.jwtService.ExtractUserIDFromRefresh(req.RefreshToken)
	if err != nil {
		return utils.Unauthorized(c, "Invalid refresh token")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.Unauthorized(c, "Invalid refresh token")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err = db.GetUserByID(ctx, s.pool, userUUID); err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "User not found")
		}
		log.Printf("error fetching user: %v", err)
		return utils.ServerError(c, "Token refresh failed")
	}

	accessToken, refreshToken, err := s.tokenPair(userID)
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return utils.ServerError(c, "Token refresh failed")
	}

	return utils.Success(c, fiber.StatusOK, "Token refreshed successfully", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset issues a one-hour reset token. The raw token is
// returned to the caller; only its hash is stored.
func (s *AuthService) RequestPasswordReset(c fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.GetUserByEmail(ctx, s.pool, req.Email)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Email not found")
		}
		log.Printf("error fetching user by email: %v", err)
		return utils.ServerError(c, "Password reset request failed")
	}

	token, tokenHash, err := utils.GenerateResetToken()
	if err != nil {
		log.Printf("error generating reset token: %v", err)
		return utils.ServerError(c, "Password reset request failed")
	}

	expires := time.Now().Add(time.Hour)
	_, err = s.pool.Exec(ctx, `
		UPDATE users SET reset_password_token = $1, reset_password_expires = $2 WHERE id = $3
	`, tokenHash, expires, user.ID)
	if err != nil {
		log.Printf("error storing reset token: %v", err)
		return utils.ServerError(c, "Password reset request failed")
	}

	return utils.Success(c, fiber.StatusOK, "Password reset token generated", fiber.Map{
		"reset_token": token,
		"expires_at":  expires,
	})
}

type passwordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword sets a new password given a valid, unexpired reset token.
func (s *AuthService) ResetPassword(c fiber.Ctx) error {
	var req passwordResetConfirm
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if req.Token == "" {
		return utils.BadRequest(c, "Reset token is required")
	}
	if !utils.IsStrongPassword(req.NewPassword) {
		return utils.BadRequest(c, "Password does not meet security requirements")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tokenHash := utils.HashResetToken(req.Token)

	var userID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > NOW()
	`, tokenHash).Scan(&userID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.BadRequest(c, "Invalid or expired reset token")
		}
		log.Printf("error looking up reset token: %v", err)
		return utils.ServerError(c, "Password reset failed")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return utils.ServerError(c, "Password reset failed")
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_password_token = NULL, reset_password_expires = NULL,
			updated_at = NOW()
		WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		log.Printf("error updating password: %v", err)
		return utils.ServerError(c, "Password reset failed")
	}

	return utils.Success(c, fiber.StatusOK, "Password reset successfully", nil)
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the authenticated user's password.
func (s *AuthService) ChangePassword(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req passwordChangeRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if !utils.IsStrongPassword(req.NewPassword) {
		return utils.BadRequest(c, "New password does not meet security requirements")
	}

	userUUID, err := uuid.Parse(userID)
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
		return utils.ServerError(c, "Password change failed")
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return utils.BadRequest(c, "Current password is incorrect")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return utils.ServerError(c, "Password change failed")
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, userUUID)
	if err != nil {
		log.Printf("error updating password: %v", err)
		return utils.ServerError(c, "Password change failed")
	}

	return utils.Success(c, fiber.StatusOK, "Password changed successfully", nil)
}

func (s *AuthService) tokenPair(userID string) (access, refresh string, err error) {
	if access, err = s.jwtService.GenerateAccessToken(userID); err != nil {
		return "", "", err
	}
	if refresh, err = s.jwtService.GenerateRefreshToken(userID); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
