package listing

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/models"
	"github.com/trove-app/trove-api/internal/utils"
)

// ListingService handles listing CRUD, filtering and merchant listing
// management.
type ListingService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
	cld        *cloudinary.Cloudinary
}

// NewListingService creates a new ListingService. cld may be nil when
// Cloudinary is not configured; image cleanup is then skipped.
func NewListingService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService, cld *cloudinary.Cloudinary) *ListingService {
	return &ListingService{cfg: cfg, pool: pool, jwtService: jwtService, cld: cld}
}

// listingFilter accumulates conjunctive WHERE conditions for the
// listing queries.
type listingFilter struct {
	conditions []string
	args       []any
}

func (f *listingFilter) add(condition string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		f.args = append(f.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(f.args))
	}
	f.conditions = append(f.conditions, fmt.Sprintf(condition, placeholders...))
}

func (f *listingFilter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// haversineMiles is the great-circle distance predicate used for
// radius filtering. Placeholders: lat, lng, lat, radius in miles.
const haversineMiles = `(3959 * acos(least(1.0,
	cos(radians(%s)) * cos(radians(latitude)) * cos(radians(longitude) - radians(%s)) +
	sin(radians(%s)) * sin(radians(latitude))))) <= %s`

// GetListings returns a filtered, paginated page of listings. Without
// an explicit status filter only available listings are returned.
func (s *ListingService) GetListings(c fiber.Ctx) error {
	var filter listingFilter

	status := c.Query("status", models.ListingStatusAvailable)
	if status != "all" {
		if !models.ValidListingStatus(status) {
			return utils.BadRequest(c, "Invalid status filter")
		}
		filter.add("status = %s", status)
	}

	if category := c.Query("category"); category != "" {
		filter.add("category = %s", category)
	}
	if raw := c.Query("min_price"); raw != "" {
		minPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil || minPrice < 0 {
			return utils.BadRequest(c, "Invalid min_price")
		}
		filter.add("price >= %s", minPrice)
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxPrice < 0 {
			return utils.BadRequest(c, "Invalid max_price")
		}
		filter.add("price <= %s", maxPrice)
	}
	if raw := c.Query("tags"); raw != "" {
		tags := strings.Split(raw, ",")
		for i := range tags {
			tags[i] = strings.TrimSpace(tags[i])
		}
		filter.add("tags && %s", tags)
	}
	if raw := c.Query("seller_id"); raw != "" {
		if !utils.IsValidID(raw) {
			return utils.BadRequest(c, "Invalid seller_id")
		}
		filter.add("seller_id = %s", raw)
	}
	if search := c.Query("search"); search != "" {
		filter.add("to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', %s)", search)
	}

	if rawLng, rawLat := c.Query("lng"), c.Query("lat"); rawLng != "" && rawLat != "" {
		lng, errLng := strconv.ParseFloat(rawLng, 64)
		lat, errLat := strconv.ParseFloat(rawLat, 64)
		if errLng != nil || errLat != nil || !utils.IsValidCoordinates([]float64{lng, lat}) {
			return utils.BadRequest(c, "Invalid coordinates")
		}
		radius, err := strconv.ParseFloat(c.Query("radius", "50"), 64)
		if err != nil || radius <= 0 {
			return utils.BadRequest(c, "Invalid radius")
		}
		filter.add(haversineMiles, lat, lng, lat, radius)
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	listings, pagination, err := s.queryListings(ctx, &filter, "created_at DESC", page, limit)
	if err != nil {
		log.Printf("error querying listings: %v", err)
		return utils.ServerError(c, "Error retrieving listings")
	}

	return utils.SuccessList(c, "Listings retrieved successfully", listings, pagination)
}

// queryListings runs the count and page queries for a built filter.
func (s *ListingService) queryListings(ctx context.Context, filter *listingFilter, orderBy string, page, limit int) ([]*models.Listing, utils.Pagination, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`+filter.where(), filter.args...).Scan(&total)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	query := fmt.Sprintf(`SELECT %s FROM listings%s ORDER BY %s LIMIT %d OFFSET %d`,
		db.ListingColumns, filter.where(), orderBy, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, filter.args...)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	listings, err := db.ScanListings(rows)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return listings, utils.PaginationMeta(page, limit, total), nil
}

// GetListingByID returns a single listing with its seller summary and
// bumps the view counter.
func (s *ListingService) GetListingByID(c fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := db.GetListingByID(ctx, s.pool, listingID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Listing not found")
		}
		log.Printf("error fetching listing: %v", err)
		return utils.ServerError(c, "Error retrieving listing")
	}

	_, err = s.pool.Exec(ctx, `UPDATE listings SET views = views + 1 WHERE id = $1`, listingID)
	if err != nil {
		log.Printf("error incrementing views for listing %s: %v", listingID, err)
	} else {
		listing.Metrics.Views++
	}

	listing.Seller = db.GetUserSummary(ctx, s.pool, listing.SellerID)

	return utils.Success(c, fiber.StatusOK, "Listing retrieved successfully", listing)
}

type createListingRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *float64         `json:"price"`
	Images      []string         `json:"images"`
	Category    string           `json:"category"`
	Tags        []string         `json:"tags"`
	Location    *models.Location `json:"location"`
}

// CreateListing creates a new listing owned by the authenticated
// seller.
func (s *ListingService) CreateListing(c fiber.Ctx) error {
	sellerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req createListingRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}
	if req.Price == nil || *req.Price < 0 {
		return utils.BadRequest(c, "Price must be zero or greater")
	}
	if len(req.Images) < 1 {
		return utils.BadRequest(c, "At least one image is required")
	}
	if len(req.Images) > s.cfg.MaxImagesPerItem {
		return utils.BadRequest(c, fmt.Sprintf("A listing may have at most %d images", s.cfg.MaxImagesPerItem))
	}
	if req.Category == "" {
		return utils.BadRequest(c, "Category is required")
	}
	if req.Location == nil || !utils.IsValidCoordinates(req.Location.Coordinates) {
		return utils.BadRequest(c, "Valid location coordinates are required")
	}

	if req.Tags == nil {
		req.Tags = []string{}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listingID := uuid.New()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO listings (id, seller_id, title, description, price, images, category, tags,
			longitude, latitude, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+db.ListingColumns,
		listingID, sellerID, req.Title, req.Description, *req.Price, req.Images,
		req.Category, req.Tags,
		req.Location.Coordinates[0], req.Location.Coordinates[1], req.Location.Address)

	listing, err := db.ScanListing(row)
	if err != nil {
		log.Printf("error creating listing: %v", err)
		return utils.ServerError(c, "Error creating listing")
	}

	return utils.Success(c, fiber.StatusCreated, "Listing created successfully", listing)
}

type updateListingRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price"`
	Images      *[]string        `json:"images"`
	Category    *string          `json:"category"`
	Tags        *[]string        `json:"tags"`
	Location    *models.Location `json:"location"`
}

// UpdateListing updates the mutable fields of a listing. Only the
// owning seller may call it.
func (s *ListingService) UpdateListing(c fiber.Ctx) error {
	listing, errResp := s.ownedListing(c)
	if listing == nil {
		return errResp
	}

	var req updateListingRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if req.Title != nil {
		if *req.Title == "" {
			return utils.BadRequest(c, "Title cannot be empty")
		}
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return utils.BadRequest(c, "Price must be zero or greater")
		}
		listing.Price = *req.Price
	}
	if req.Images != nil {
		if len(*req.Images) < 1 {
			return utils.BadRequest(c, "At least one image is required")
		}
		if len(*req.Images) > s.cfg.MaxImagesPerItem {
			return utils.BadRequest(c, fmt.Sprintf("A listing may have at most %d images", s.cfg.MaxImagesPerItem))
		}
		listing.Images = *req.Images
	}
	if req.Category != nil {
		if *req.Category == "" {
			return utils.BadRequest(c, "Category cannot be empty")
		}
		listing.Category = *req.Category
	}
	if req.Tags != nil {
		listing.Tags = *req.Tags
	}
	if req.Location != nil {
		if !utils.IsValidCoordinates(req.Location.Coordinates) {
			return utils.BadRequest(c, "Invalid coordinates")
		}
		listing.Location = *req.Location
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		UPDATE listings
		SET title = $1, description = $2, price = $3, images = $4, category = $5, tags = $6,
			longitude = $7, latitude = $8, address = $9, updated_at = NOW()
		WHERE id = $10
	`, listing.Title, listing.Description, listing.Price, listing.Images, listing.Category,
		listing.Tags, listing.Location.Coordinates[0], listing.Location.Coordinates[1],
		listing.Location.Address, listing.ID)
	if err != nil {
		log.Printf("error updating listing %s: %v", listing.ID, err)
		return utils.ServerError(c, "Error updating listing")
	}

	return utils.Success(c, fiber.StatusOK, "Listing updated successfully", listing)
}

// DeleteListing removes a listing and best-effort deletes its images
// from Cloudinary.
func (s *ListingService) DeleteListing(c fiber.Ctx) error {
	listing, errResp := s.ownedListing(c)
	if listing == nil {
		return errResp
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listing.ID)
	if err != nil {
		log.Printf("error deleting listing %s: %v", listing.ID, err)
		return utils.ServerError(c, "Error deleting listing")
	}

	if s.cld != nil {
		go s.destroyImages(listing.Images)
	}

	return utils.Success(c, fiber.StatusOK, "Listing deleted successfully", nil)
}

// destroyImages removes uploaded images from Cloudinary. Failures are
// logged only; the listing row is already gone.
func (s *ListingService) destroyImages(imageURLs []string) {
	ctx, cancel := db.GetContext()
	defer cancel()

	for _, url := range imageURLs {
		publicID := publicIDFromURL(url)
		if publicID == "" {
			continue
		}
		_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			log.Printf("error destroying image %s: %v", publicID, err)
		}
	}
}

// publicIDFromURL extracts the Cloudinary public ID from a delivery
// URL, dropping the version segment and file extension.
func publicIDFromURL(url string) string {
	_, after, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}
	parts := strings.Split(after, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		if _, err := strconv.Atoi(parts[0][1:]); err == nil {
			parts = parts[1:]
		}
	}
	publicID := strings.Join(parts, "/")
	if dot := strings.LastIndex(publicID, "."); dot > strings.LastIndex(publicID, "/") {
		publicID = publicID[:dot]
	}
	return publicID
}

// GetMerchantListings returns the authenticated seller's own listings,
// optionally filtered by status.
func (s *ListingService) GetMerchantListings(c fiber.Ctx) error {
	sellerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var filter listingFilter
	filter.add("seller_id = %s", sellerID)
	if status := c.Query("status"); status != "" {
		if !models.ValidListingStatus(status) {
			return utils.BadRequest(c, "Invalid status filter")
		}
		filter.add("status = %s", status)
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	listings, pagination, err := s.queryListings(ctx, &filter, "created_at DESC", page, limit)
	if err != nil {
		log.Printf("error querying merchant listings: %v", err)
		return utils.ServerError(c, "Error retrieving listings")
	}

	return utils.SuccessList(c, "Listings retrieved successfully", listings, pagination)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateListingStatus changes a listing's availability status.
func (s *ListingService) UpdateListingStatus(c fiber.Ctx) error {
	listing, errResp := s.ownedListing(c)
	if listing == nil {
		return errResp
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if !models.ValidListingStatus(req.Status) {
		return utils.BadRequest(c, "Invalid status")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, listing.ID)
	if err != nil {
		log.Printf("error updating listing status %s: %v", listing.ID, err)
		return utils.ServerError(c, "Error updating listing status")
	}

	listing.Status = req.Status
	return utils.Success(c, fiber.StatusOK, "Listing status updated successfully", listing)
}

type featureListingRequest struct {
	Featured bool `json:"featured"`
}

// FeatureListing toggles the featured flag. Featuring requires an
// active premium subscription.
func (s *ListingService) FeatureListing(c fiber.Ctx) error {
	listing, errResp := s.ownedListing(c)
	if listing == nil {
		return errResp
	}

	var req featureListingRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if req.Featured {
		user, err := db.GetUserByID(ctx, s.pool, listing.SellerID)
		if err != nil {
			log.Printf("error fetching user: %v", err)
			return utils.ServerError(c, "Error updating listing")
		}
		if user.SubscriptionStatus != models.SubscriptionPremium {
			return utils.Forbidden(c, "Featuring listings requires a premium subscription")
		}
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET featured = $1, updated_at = NOW() WHERE id = $2`, req.Featured, listing.ID)
	if err != nil {
		log.Printf("error updating featured flag %s: %v", listing.ID, err)
		return utils.ServerError(c, "Error updating listing")
	}

	listing.Featured = req.Featured
	message := "Listing unfeatured successfully"
	if req.Featured {
		message = "Listing featured successfully"
	}
	return utils.Success(c, fiber.StatusOK, message, listing)
}

// ownedListing loads the listing in the :id parameter and checks that
// the authenticated user owns it. On failure it returns nil and the
// already-written error response.
func (s *ListingService) ownedListing(c fiber.Ctx) (*models.Listing, error) {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid user ID")
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid listing ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := db.GetListingByID(ctx, s.pool, listingID)
	if err != nil {
		if utils.IsNoRows(err) {
			return nil, utils.NotFound(c, "Listing not found")
		}
		log.Printf("error fetching listing: %v", err)
		return nil, utils.ServerError(c, "Error retrieving listing")
	}

	if listing.SellerID != userUUID {
		return nil, utils.Forbidden(c, "You do not own this listing")
	}

	return listing, nil
}
