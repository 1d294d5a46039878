package merchant

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

// MerchantService serves the seller dashboard and analytics.
type MerchantService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewMerchantService creates a new MerchantService.
func NewMerchantService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *MerchantService {
	return &MerchantService{cfg: cfg, pool: pool, jwtService: jwtService}
}

// timeframeInterval maps the timeframe query parameter to a Postgres
// interval. Empty means no time bound.
func timeframeInterval(timeframe string) (string, error) {
	switch timeframe {
	case "week":
		return "7 days", nil
	case "month":
		return "30 days", nil
	case "year":
		return "365 days", nil
	case "", "all":
		return "", nil
	}
	return "", fmt.Errorf("unknown timeframe %q", timeframe)
}

// GetDashboardSummary returns the at-a-glance numbers for the seller
// dashboard plus the five most recent listings and offers.
func (s *MerchantService) GetDashboardSummary(c fiber.Ctx) error {
	sellerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var (
		available, pending, sold  int
		views, offerCount, saves  int
		pendingOffers             int
		unreadMessages            int
	)

	err = s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'available'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'sold'),
			COALESCE(SUM(views), 0),
			COALESCE(SUM(offers), 0),
			COALESCE(SUM(saves), 0)
		FROM listings WHERE seller_id = $1
	`, sellerID).Scan(&available, &pending, &sold, &views, &offerCount, &saves)
	if err != nil {
		log.Printf("error aggregating listings: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM offers
		WHERE seller_id = $1 AND status IN ('pending', 'countered')
	`, sellerID).Scan(&pendingOffers)
	if err != nil {
		log.Printf("error counting pending offers: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND read = FALSE
	`, sellerID).Scan(&unreadMessages)
	if err != nil {
		log.Printf("error counting unread messages: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+db.ListingColumns+` FROM listings
		WHERE seller_id = $1 ORDER BY created_at DESC LIMIT 5
	`, sellerID)
	if err != nil {
		log.Printf("error querying recent listings: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}
	recentListings, err := db.ScanListings(rows)
	if err != nil {
		log.Printf("error scanning recent listings: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}

	offerRows, err := s.pool.Query(ctx, `
		SELECT `+db.OfferColumns+` FROM offers
		WHERE seller_id = $1 ORDER BY created_at DESC LIMIT 5
	`, sellerID)
	if err != nil {
		log.Printf("error querying recent offers: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}
	recentOffers, err := db.ScanOffers(offerRows)
	if err != nil {
		log.Printf("error scanning recent offers: %v", err)
		return utils.ServerError(c, "Error retrieving dashboard")
	}
	for _, offer := range recentOffers {
		offer.Listing = db.GetListingSummary(ctx, s.pool, offer.ListingID)
		offer.Buyer = db.GetUserSummary(ctx, s.pool, offer.BuyerID)
	}

	return utils.Success(c, fiber.StatusOK, "Dashboard retrieved successfully", fiber.Map{
		"listings": fiber.Map{
			"available": available,
			"pending":   pending,
			"sold":      sold,
			"total":     available + pending + sold,
		},
		"metrics": models.ListingMetrics{Views: views, Offers: offerCount, Saves: saves},
		"pending_offers":  pendingOffers,
		"unread_messages": unreadMessages,
		"recent_listings": recentListings,
		"recent_offers":   recentOffers,
	})
}

type categoryBreakdown struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Views    int     `json:"views"`
	AvgPrice float64 `json:"avg_price"`
}

// GetInventoryAnalytics breaks the seller's inventory down by category
// and status for a timeframe and surfaces the most viewed and most
// saved listings.
func (s *MerchantService) GetInventoryAnalytics(c fiber.Ctx) error {
	sellerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	interval, err := timeframeInterval(c.Query("timeframe"))
	if err != nil {
		return utils.BadRequest(c, "Timeframe must be week, month, year or all")
	}
	timeBound := ""
	if interval != "" {
		timeBound = fmt.Sprintf(" AND created_at > NOW() - INTERVAL '%s'", interval)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(views), 0), COALESCE(AVG(price), 0)
		FROM listings WHERE seller_id = $1`+timeBound+`
		GROUP BY category ORDER BY COUNT(*) DESC
	`, sellerID)
	if err != nil {
		log.Printf("error aggregating categories: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}
	defer rows.Close()

	byCategory := []categoryBreakdown{}
	for rows.Next() {
		var entry categoryBreakdown
		if err := rows.Scan(&entry.Category, &entry.Count, &entry.Views, &entry.AvgPrice); err != nil {
			log.Printf("error scanning category breakdown: %v", err)
			return utils.ServerError(c, "Error retrieving inventory analytics")
		}
		byCategory = append(byCategory, entry)
	}
	if err := rows.Err(); err != nil {
		log.Printf("error reading category breakdown: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}
	rows.Close()

	byStatus := map[string]int{}
	statusRows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM listings WHERE seller_id = $1`+timeBound+` GROUP BY status
	`, sellerID)
	if err != nil {
		log.Printf("error aggregating statuses: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			log.Printf("error scanning status breakdown: %v", err)
			return utils.ServerError(c, "Error retrieving inventory analytics")
		}
		byStatus[status] = count
	}
	if err := statusRows.Err(); err != nil {
		log.Printf("error reading status breakdown: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}
	statusRows.Close()

	topViewed, err := s.topListings(sellerID, timeBound, "views")
	if err != nil {
		log.Printf("error querying top viewed: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}
	topSaved, err := s.topListings(sellerID, timeBound, "saves")
	if err != nil {
		log.Printf("error querying top saved: %v", err)
		return utils.ServerError(c, "Error retrieving inventory analytics")
	}

	return utils.Success(c, fiber.StatusOK, "Inventory analytics retrieved successfully", fiber.Map{
		"by_category": byCategory,
		"by_status":   byStatus,
		"top_viewed":  topViewed,
		"top_saved":   topSaved,
	})
}

func (s *MerchantService) topListings(sellerID uuid.UUID, timeBound, metric string) ([]*models.Listing, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM listings WHERE seller_id = $1%s ORDER BY %s DESC LIMIT 5`,
		db.ListingColumns, timeBound, metric)
	rows, err := s.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	return db.ScanListings(rows)
}

// GetOfferAnalytics summarizes the seller's received offers: status
// breakdown, average offer-to-asking percentage and how often
// negotiations with counters close as accepted.
func (s *MerchantService) GetOfferAnalytics(c fiber.Ctx) error {
	sellerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	interval, err := timeframeInterval(c.Query("timeframe"))
	if err != nil {
		return utils.BadRequest(c, "Timeframe must be week, month, year or all")
	}
	timeBound := ""
	if interval != "" {
		timeBound = fmt.Sprintf(" AND created_at > NOW() - INTERVAL '%s'", interval)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	byStatus := map[string]int{}
	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM offers WHERE seller_id = $1`+timeBound+` GROUP BY status
	`, sellerID)
	if err != nil {
		log.Printf("error aggregating offer statuses: %v", err)
		return utils.ServerError(c, "Error retrieving offer analytics")
	}
	defer rows.Close()
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("error scanning offer status breakdown: %v", err)
			return utils.ServerError(c, "Error retrieving offer analytics")
		}
		byStatus[status] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		log.Printf("error reading offer status breakdown: %v", err)
		return utils.ServerError(c, "Error retrieving offer analytics")
	}
	rows.Close()

	var avgOfferPercentage float64
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(offer_price / NULLIF(original_price, 0) * 100), 0)
		FROM offers WHERE seller_id = $1`+timeBound+`
	`, sellerID).Scan(&avgOfferPercentage)
	if err != nil {
		log.Printf("error averaging offer percentage: %v", err)
		return utils.ServerError(c, "Error retrieving offer analytics")
	}

	var negotiated, negotiatedAccepted int
	var avgCounterRounds float64
	err = s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE jsonb_array_length(counter_offers) > 0),
			COUNT(*) FILTER (WHERE jsonb_array_length(counter_offers) > 0 AND status = 'accepted'),
			COALESCE(AVG(jsonb_array_length(counter_offers))
				FILTER (WHERE jsonb_array_length(counter_offers) > 0), 0)
		FROM offers WHERE seller_id = $1`+timeBound+`
	`, sellerID).Scan(&negotiated, &negotiatedAccepted, &avgCounterRounds)
	if err != nil {
		log.Printf("error aggregating negotiations: %v", err)
		return utils.ServerError(c, "Error retrieving offer analytics")
	}

	negotiationEfficiency := 0.0
	if negotiated > 0 {
		negotiationEfficiency = float64(negotiatedAccepted) / float64(negotiated) * 100
	}

	return utils.Success(c, fiber.StatusOK, "Offer analytics retrieved successfully", fiber.Map{
		"total_offers":           total,
		"by_status":              byStatus,
		"avg_offer_percentage":   avgOfferPercentage,
		"negotiated_offers":      negotiated,
		"avg_counter_rounds":     avgCounterRounds,
		"negotiation_efficiency": negotiationEfficiency,
	})
}
