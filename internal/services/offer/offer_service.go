package offer

import (
	"context"
	"encoding/json"
	"fmt"
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

// OfferService handles the offer and counter-offer negotiation flow.
type OfferService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewOfferService creates a new OfferService.
func NewOfferService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *OfferService {
	return &OfferService{cfg: cfg, pool: pool, jwtService: jwtService}
}

type createOfferRequest struct {
	ListingID string   `json:"listing_id"`
	Price     *float64 `json:"price"`
}

// CreateOffer opens a negotiation on an available listing. The buyer
// cannot be the seller and the price must be positive. The offer
// expires after the configured number of days unless acted on.
func (s *OfferService) CreateOffer(c fiber.Ctx) error {
	buyerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req createOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return utils.BadRequest(c, "Invalid listing ID")
	}
	if req.Price == nil || *req.Price <= 0 {
		return utils.BadRequest(c, "Offer price must be greater than zero")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := db.GetListingByID(ctx, s.pool, listingID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Listing not found")
		}
		log.Printf("error fetching listing: %v", err)
		return utils.ServerError(c, "Error creating offer")
	}

	if listing.Status != models.ListingStatusAvailable {
		return utils.BadRequest(c, "Listing is not available for offers")
	}
	if listing.SellerID == buyerID {
		return utils.BadRequest(c, "You cannot make an offer on your own listing")
	}

	offerID := uuid.New()
	expiresAt := time.Now().Add(time.Duration(s.cfg.OfferExpiryDays) * 24 * time.Hour)

	row := s.pool.QueryRow(ctx, `
		INSERT INTO offers (id, listing_id, buyer_id, seller_id, original_price, offer_price, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+db.OfferColumns,
		offerID, listingID, buyerID, listing.SellerID, listing.Price, *req.Price, expiresAt)

	offer, err := db.ScanOffer(row)
	if err != nil {
		log.Printf("error creating offer: %v", err)
		return utils.ServerError(c, "Error creating offer")
	}

	_, err = s.pool.Exec(ctx, `UPDATE listings SET offers = offers + 1 WHERE id = $1`, listingID)
	if err != nil {
		log.Printf("error incrementing offer count for listing %s: %v", listingID, err)
	}

	s.attachJoins(ctx, offer)
	return utils.Success(c, fiber.StatusCreated, "Offer created successfully", offer)
}

// GetOfferByID returns an offer to one of its two parties.
func (s *OfferService) GetOfferByID(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid offer ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	offer, err := db.GetOfferByID(ctx, s.pool, offerID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Offer not found")
		}
		log.Printf("error fetching offer: %v", err)
		return utils.ServerError(c, "Error retrieving offer")
	}

	isBuyer, isSeller := offer.Party(userUUID)
	if !isBuyer && !isSeller {
		return utils.Forbidden(c, "You are not a party to this offer")
	}

	s.attachJoins(ctx, offer)
	return utils.Success(c, fiber.StatusOK, "Offer retrieved successfully", offer)
}

type updateOfferStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOfferStatus lets the seller accept, reject or expire an offer
// that is still negotiable. Accepting moves the listing to pending.
func (s *OfferService) UpdateOfferStatus(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid offer ID")
	}

	var req updateOfferStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if !models.ValidOfferDecision(req.Status) {
		return utils.BadRequest(c, "Status must be accepted, rejected or expired")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	offer, err := db.GetOfferByID(ctx, s.pool, offerID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Offer not found")
		}
		log.Printf("error fetching offer: %v", err)
		return utils.ServerError(c, "Error updating offer")
	}

	if offer.SellerID != userUUID {
		return utils.Forbidden(c, "Only the seller can decide on an offer")
	}
	if !offer.Negotiable() {
		return utils.BadRequest(c, fmt.Sprintf("Offer is already %s", offer.Status))
	}

	if err := s.applyDecision(ctx, offer, req.Status); err != nil {
		log.Printf("error updating offer status %s: %v", offerID, err)
		return utils.ServerError(c, "Error updating offer")
	}

	s.attachJoins(ctx, offer)
	return utils.Success(c, fiber.StatusOK, "Offer status updated successfully", offer)
}

// applyDecision persists a terminal decision on an offer. Accepting
// also moves the listing to pending so it leaves the open market.
func (s *OfferService) applyDecision(ctx context.Context, offer *models.Offer, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE offers SET status = $1, updated_at = NOW() WHERE id = $2`, status, offer.ID)
	if err != nil {
		return err
	}
	offer.Status = status

	if status == models.OfferStatusAccepted {
		_, err = s.pool.Exec(ctx,
			`UPDATE listings SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.ListingStatusPending, offer.ListingID)
		if err != nil {
			log.Printf("error moving listing %s to pending: %v", offer.ListingID, err)
		}
	}

	return nil
}

type counterOfferRequest struct {
	Price *float64 `json:"price"`
}

// CounterOffer appends a counter to the negotiation history. Either
// party may counter while the offer is negotiable; the expiry window
// restarts on every counter. No price monotonicity is enforced.
func (s *OfferService) CounterOffer(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid offer ID")
	}

	var req counterOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if req.Price == nil || *req.Price <= 0 {
		return utils.BadRequest(c, "Counter-offer price must be greater than zero")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	offer, err := db.GetOfferByID(ctx, s.pool, offerID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Offer not found")
		}
		log.Printf("error fetching offer: %v", err)
		return utils.ServerError(c, "Error countering offer")
	}

	isBuyer, isSeller := offer.Party(userUUID)
	if !isBuyer && !isSeller {
		return utils.Forbidden(c, "You are not a party to this offer")
	}
	if !offer.Negotiable() {
		return utils.BadRequest(c, fmt.Sprintf("Offer is already %s", offer.Status))
	}

	entry := offer.AddCounter(*req.Price, userUUID, time.Now(), s.cfg.OfferExpiryDays)
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		log.Printf("error encoding counter-offer: %v", err)
		return utils.ServerError(c, "Error countering offer")
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE offers
		SET counter_offers = counter_offers || $1::jsonb, status = $2, expires_at = $3,
			updated_at = NOW()
		WHERE id = $4
	`, entryJSON, offer.Status, offer.ExpiresAt, offerID)
	if err != nil {
		log.Printf("error appending counter-offer %s: %v", offerID, err)
		return utils.ServerError(c, "Error countering offer")
	}

	s.attachJoins(ctx, offer)
	return utils.Success(c, fiber.StatusOK, "Counter-offer submitted successfully", offer)
}

// GetBuyerOffers lists the authenticated user's offers as a buyer.
func (s *OfferService) GetBuyerOffers(c fiber.Ctx) error {
	return s.listOffers(c, "buyer_id")
}

// GetSellerOffers lists the authenticated user's received offers.
func (s *OfferService) GetSellerOffers(c fiber.Ctx) error {
	return s.listOffers(c, "seller_id")
}

func (s *OfferService) listOffers(c fiber.Ctx, ownerColumn string) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	conditions := ownerColumn + ` = $1`
	args := []any{userUUID}
	if status := c.Query("status"); status != "" {
		args = append(args, status)
		conditions += fmt.Sprintf(" AND status = $%d", len(args))
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	var total int
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE `+conditions, args...).Scan(&total)
	if err != nil {
		log.Printf("error counting offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	query := fmt.Sprintf(`SELECT %s FROM offers WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		db.OfferColumns, conditions, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("error querying offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	offers, err := db.ScanOffers(rows)
	if err != nil {
		log.Printf("error scanning offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	for _, offer := range offers {
		s.attachJoins(ctx, offer)
	}

	return utils.SuccessList(c, "Offers retrieved successfully",
		offers, utils.PaginationMeta(page, limit, total))
}

// GetListingOffers lists the offers on one listing. Only the listing's
// seller may call it.
func (s *OfferService) GetListingOffers(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	listingID, err := uuid.Parse(c.Params("listingId"))
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
		return utils.ServerError(c, "Error retrieving offers")
	}
	if listing.SellerID != userUUID {
		return utils.Forbidden(c, "You do not own this listing")
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	var total int
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE listing_id = $1`, listingID).Scan(&total)
	if err != nil {
		log.Printf("error counting listing offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	query := fmt.Sprintf(`SELECT %s FROM offers WHERE listing_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		db.OfferColumns, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, listingID)
	if err != nil {
		log.Printf("error querying listing offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	offers, err := db.ScanOffers(rows)
	if err != nil {
		log.Printf("error scanning listing offers: %v", err)
		return utils.ServerError(c, "Error retrieving offers")
	}

	for _, offer := range offers {
		s.attachJoins(ctx, offer)
	}

	return utils.SuccessList(c, "Offers retrieved successfully",
		offers, utils.PaginationMeta(page, limit, total))
}

// attachJoins fills in the embedded listing and buyer summaries used
// by the mobile client. Lookup failures leave the fields nil.
func (s *OfferService) attachJoins(ctx context.Context, offer *models.Offer) {
	offer.Listing = db.GetListingSummary(ctx, s.pool, offer.ListingID)
	offer.Buyer = db.GetUserSummary(ctx, s.pool, offer.BuyerID)
}
