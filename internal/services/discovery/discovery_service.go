package discovery

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/models"
	"github.com/trove-app/trove-api/internal/utils"
)

// DiscoveryService serves the personalized swipe feed.
type DiscoveryService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *DiscoveryService {
	return &DiscoveryService{cfg: cfg, pool: pool, jwtService: jwtService}
}

// GetDiscoveryListings returns available listings filtered by the
// requesting user's stored preferences, featured ones first, newest
// next. The user's own listings and ones they already swiped on are
// excluded.
func (s *DiscoveryService) GetDiscoveryListings(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
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
		return utils.ServerError(c, "Error retrieving discovery feed")
	}

	conditions := `status = 'available' AND seller_id <> $1
		AND NOT EXISTS (
			SELECT 1 FROM swipe_interactions si
			WHERE si.user_id = $1 AND si.listing_id = listings.id
		)`
	args := []any{userUUID}

	if len(user.Preferences.Categories) > 0 {
		args = append(args, user.Preferences.Categories)
		conditions += fmt.Sprintf(" AND category = ANY($%d)", len(args))
	}

	args = append(args, user.Preferences.PriceRange.Min)
	conditions += fmt.Sprintf(" AND price >= $%d", len(args))
	args = append(args, user.Preferences.PriceRange.Max)
	conditions += fmt.Sprintf(" AND price <= $%d", len(args))

	if utils.IsValidCoordinates(user.Location.Coordinates) &&
		(user.Location.Coordinates[0] != 0 || user.Location.Coordinates[1] != 0) {
		lng, lat := user.Location.Coordinates[0], user.Location.Coordinates[1]
		args = append(args, lat, lng, lat, user.Preferences.SearchRadius)
		n := len(args)
		conditions += fmt.Sprintf(` AND (3959 * acos(least(1.0,
			cos(radians($%d)) * cos(radians(latitude)) * cos(radians(longitude) - radians($%d)) +
			sin(radians($%d)) * sin(radians(latitude))))) <= $%d`, n-3, n-2, n-1, n)
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	var total int
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE `+conditions, args...).Scan(&total)
	if err != nil {
		log.Printf("error counting discovery listings: %v", err)
		return utils.ServerError(c, "Error retrieving discovery feed")
	}

	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s
		ORDER BY featured DESC, created_at DESC LIMIT %d OFFSET %d`,
		db.ListingColumns, conditions, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("error querying discovery listings: %v", err)
		return utils.ServerError(c, "Error retrieving discovery feed")
	}

	listings, err := db.ScanListings(rows)
	if err != nil {
		log.Printf("error scanning discovery listings: %v", err)
		return utils.ServerError(c, "Error retrieving discovery feed")
	}

	return utils.SuccessList(c, "Discovery listings retrieved successfully",
		listings, utils.PaginationMeta(page, limit, total))
}

type swipeRequest struct {
	ListingID string `json:"listing_id"`
	Direction string `json:"direction"`
}

// RecordSwipeInteraction stores a left or right swipe. A right swipe
// also saves the listing for the user.
func (s *DiscoveryService) RecordSwipeInteraction(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req swipeRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}
	if req.Direction != "left" && req.Direction != "right" {
		return utils.BadRequest(c, "Direction must be 'left' or 'right'")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1 AND status = $2)`,
		listingID, models.ListingStatusAvailable).Scan(&exists)
	if err != nil {
		log.Printf("error checking listing: %v", err)
		return utils.ServerError(c, "Error recording interaction")
	}
	if !exists {
		return utils.NotFound(c, "Listing not found")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO swipe_interactions (id, user_id, listing_id, direction)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), userUUID, listingID, req.Direction)
	if err != nil {
		log.Printf("error recording swipe: %v", err)
		return utils.ServerError(c, "Error recording interaction")
	}

	if req.Direction == "right" {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO saved_listings (id, user_id, listing_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, listing_id) DO NOTHING
		`, uuid.New(), userUUID, listingID)
		if err != nil {
			log.Printf("error saving listing on swipe: %v", err)
		} else if tag.RowsAffected() > 0 {
			_, err = s.pool.Exec(ctx, `UPDATE listings SET saves = saves + 1 WHERE id = $1`, listingID)
			if err != nil {
				log.Printf("error incrementing saves for listing %s: %v", listingID, err)
			}
		}
	}

	return utils.Success(c, fiber.StatusCreated, "Interaction recorded successfully", fiber.Map{
		"listing_id": listingID,
		"direction":  req.Direction,
	})
}
