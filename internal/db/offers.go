package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/models"
)

// OfferColumns is the canonical column list for scanning a full offer
// row.
const OfferColumns = `id, listing_id, buyer_id, seller_id, original_price, offer_price,
	status, counter_offers, expires_at, created_at, updated_at`

// GetOfferByID fetches an offer by primary key.
func GetOfferByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.Offer, error) {
	row := pool.QueryRow(ctx, `SELECT `+OfferColumns+` FROM offers WHERE id = $1`, id)
	return ScanOffer(row)
}

// ScanOffer scans a row selected with OfferColumns into an Offer. The
// counter-offer history is stored as a JSONB array.
func ScanOffer(row pgx.Row) (*models.Offer, error) {
	var (
		offer   models.Offer
		history []byte
	)

	err := row.Scan(
		&offer.ID,
		&offer.ListingID,
		&offer.BuyerID,
		&offer.SellerID,
		&offer.OriginalPrice,
		&offer.OfferPrice,
		&offer.Status,
		&history,
		&offer.ExpiresAt,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(history, &offer.CounterOffers); err != nil {
		return nil, err
	}
	if offer.CounterOffers == nil {
		offer.CounterOffers = []models.CounterOffer{}
	}

	return &offer, nil
}

// ScanOffers drains rows selected with OfferColumns.
func ScanOffers(rows pgx.Rows) ([]*models.Offer, error) {
	defer rows.Close()

	offers := []*models.Offer{}
	for rows.Next() {
		offer, err := ScanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}
