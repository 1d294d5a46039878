package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/models"
)

// ListingColumns is the canonical column list for scanning a full
// listing row.
const ListingColumns = `id, seller_id, title, description, price, images, category, tags,
	longitude, latitude, address, status, featured, views, offers, saves,
	created_at, updated_at`

// GetListingByID fetches a listing by primary key.
func GetListingByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.Listing, error) {
	row := pool.QueryRow(ctx, `SELECT `+ListingColumns+` FROM listings WHERE id = $1`, id)
	return ScanListing(row)
}

// ScanListing scans a row selected with ListingColumns into a Listing.
func ScanListing(row pgx.Row) (*models.Listing, error) {
	var (
		listing  models.Listing
		lng, lat float64
	)

	err := row.Scan(
		&listing.ID,
		&listing.SellerID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.Images,
		&listing.Category,
		&listing.Tags,
		&lng,
		&lat,
		&listing.Location.Address,
		&listing.Status,
		&listing.Featured,
		&listing.Metrics.Views,
		&listing.Metrics.Offers,
		&listing.Metrics.Saves,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.Location.Coordinates = []float64{lng, lat}
	return &listing, nil
}

// ScanListings drains rows selected with ListingColumns.
func ScanListings(rows pgx.Rows) ([]*models.Listing, error) {
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		listing, err := ScanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// GetListingSummary fetches the reduced listing payload embedded in
// offers and conversations, or nil when the listing no longer exists.
func GetListingSummary(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) *models.ListingSummary {
	var summary models.ListingSummary
	err := pool.QueryRow(ctx,
		`SELECT id, title, price, images, status FROM listings WHERE id = $1`, id).
		Scan(&summary.ID, &summary.Title, &summary.Price, &summary.Images, &summary.Status)
	if err != nil {
		return nil
	}
	return &summary
}
