package favorite

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/utils"
)

// FavoriteService handles the user's saved listings.
type FavoriteService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *FavoriteService {
	return &FavoriteService{cfg: cfg, pool: pool, jwtService: jwtService}
}

type saveListingRequest struct {
	ListingID string `json:"listing_id"`
}

// SaveListing adds a listing to the caller's saved list and bumps the
// listing's saves counter.
func (s *FavoriteService) SaveListing(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req saveListingRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	listingUUID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, listingUUID).Scan(&exists)
	if err != nil {
		log.Printf("error checking listing: %v", err)
		return utils.ServerError(c, "Error saving listing")
	}
	if !exists {
		return utils.NotFound(c, "Listing not found")
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO saved_listings (id, user_id, listing_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, listing_id) DO NOTHING
	`, uuid.New(), userUUID, listingUUID)
	if err != nil {
		log.Printf("error saving listing: %v", err)
		return utils.ServerError(c, "Error saving listing")
	}
	if tag.RowsAffected() == 0 {
		return utils.BadRequest(c, "Listing is already saved")
	}

	_, err = s.pool.Exec(ctx, `UPDATE listings SET saves = saves + 1 WHERE id = $1`, listingUUID)
	if err != nil {
		log.Printf("error incrementing saves for listing %s: %v", listingUUID, err)
	}

	return utils.Success(c, fiber.StatusCreated, "Listing saved successfully", fiber.Map{
		"listing_id": listingUUID,
	})
}

// UnsaveListing removes a listing from the caller's saved list and
// lowers the saves counter, floored at zero.
func (s *FavoriteService) UnsaveListing(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2`, userUUID, listingUUID)
	if err != nil {
		log.Printf("error removing saved listing: %v", err)
		return utils.ServerError(c, "Error removing saved listing")
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFound(c, "Listing is not in your saved list")
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE listings SET saves = GREATEST(saves - 1, 0) WHERE id = $1`, listingUUID)
	if err != nil {
		log.Printf("error decrementing saves for listing %s: %v", listingUUID, err)
	}

	return utils.Success(c, fiber.StatusOK, "Listing removed from saved list", nil)
}

// GetSavedListings returns the caller's saved listings, most recently
// saved first.
func (s *FavoriteService) GetSavedListings(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	var total int
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_listings WHERE user_id = $1`, userUUID).Scan(&total)
	if err != nil {
		log.Printf("error counting saved listings: %v", err)
		return utils.ServerError(c, "Error retrieving saved listings")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+prefixedListingColumns+`
		FROM saved_listings sl
		JOIN listings l ON l.id = sl.listing_id
		WHERE sl.user_id = $1
		ORDER BY sl.created_at DESC
		LIMIT $2 OFFSET $3
	`, userUUID, limit, utils.Offset(page, limit))
	if err != nil {
		log.Printf("error querying saved listings: %v", err)
		return utils.ServerError(c, "Error retrieving saved listings")
	}

	listings, err := db.ScanListings(rows)
	if err != nil {
		log.Printf("error scanning saved listings: %v", err)
		return utils.ServerError(c, "Error retrieving saved listings")
	}

	return utils.SuccessList(c, "Saved listings retrieved successfully",
		listings, utils.PaginationMeta(page, limit, total))
}

// CheckSaved reports whether one listing is in the caller's saved list.
func (s *FavoriteService) CheckSaved(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var saved bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM saved_listings WHERE user_id = $1 AND listing_id = $2)`,
		userUUID, listingUUID).Scan(&saved)
	if err != nil {
		log.Printf("error checking saved listing: %v", err)
		return utils.ServerError(c, "Error checking saved listing")
	}

	return utils.Success(c, fiber.StatusOK, "Saved status retrieved", fiber.Map{
		"listing_id": listingUUID,
		"saved":      saved,
	})
}

// prefixedListingColumns qualifies db.ListingColumns with the l alias
// for the saved-listings join.
const prefixedListingColumns = `l.id, l.seller_id, l.title, l.description, l.price, l.images,
	l.category, l.tags, l.longitude, l.latitude, l.address, l.status, l.featured,
	l.views, l.offers, l.saves, l.created_at, l.updated_at`
