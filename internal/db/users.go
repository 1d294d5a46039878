package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/models"
)

// UserColumns is the canonical column list for scanning a full user row.
const UserColumns = `id, email, password_hash, name, phone, longitude, latitude, address,
	user_type, subscription_status, subscription_expires_at,
	pref_categories, pref_price_min, pref_price_max, pref_search_radius,
	reset_password_token, reset_password_expires, last_login, created_at, updated_at`

// GetUserByID fetches a user by primary key.
func GetUserByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.User, error) {
	row := pool.QueryRow(ctx, `SELECT `+UserColumns+` FROM users WHERE id = $1`, id)
	return ScanUser(row)
}

// GetUserByEmail fetches a user by email.
func GetUserByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*models.User, error) {
	row := pool.QueryRow(ctx, `SELECT `+UserColumns+` FROM users WHERE email = $1`, email)
	return ScanUser(row)
}

// ScanUser scans a row selected with UserColumns into a User.
func ScanUser(row pgx.Row) (*models.User, error) {
	var (
		user       models.User
		lng, lat   float64
		resetToken *string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&lng,
		&lat,
		&user.Location.Address,
		&user.UserType,
		&user.SubscriptionStatus,
		&user.SubscriptionExpiryDate,
		&user.Preferences.Categories,
		&user.Preferences.PriceRange.Min,
		&user.Preferences.PriceRange.Max,
		&user.Preferences.SearchRadius,
		&resetToken,
		&user.ResetPasswordExpires,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Location.Coordinates = []float64{lng, lat}
	if resetToken != nil {
		user.ResetPasswordToken = *resetToken
	}

	return &user, nil
}

// GetUserSummary fetches the reduced user payload embedded in other
// resources, or nil when the user no longer exists.
func GetUserSummary(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) *models.UserSummary {
	var summary models.UserSummary
	err := pool.QueryRow(ctx, `SELECT id, name FROM users WHERE id = $1`, id).
		Scan(&summary.ID, &summary.Name)
	if err != nil {
		return nil
	}
	return &summary
}
