package offer

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/models"
)

// testPool connects to the database named by TEST_DATABASE_URL, which
// must have scripts/schema.sql applied. Skipped when unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func insertTestUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, 'x', 'Test User')
	`, id, fmt.Sprintf("%s@test.example", id))
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestAcceptingOfferMovesListingToPending(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	sellerID := insertTestUser(t, pool)
	buyerID := insertTestUser(t, pool)

	listingID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO listings (id, seller_id, title, price, images, category, longitude, latitude)
		VALUES ($1, $2, 'Walnut dresser', 120, '{img1}', 'furniture', -73.97, 40.77)
	`, listingID, sellerID)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	})

	offerID := uuid.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO offers (id, listing_id, buyer_id, seller_id, original_price, offer_price, expires_at)
		VALUES ($1, $2, $3, $4, 120, 100, $5)
	`, offerID, listingID, buyerID, sellerID, time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	})

	svc := NewOfferService(&config.Config{OfferExpiryDays: 7}, pool, nil)

	offer, err := db.GetOfferByID(ctx, pool, offerID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusPending, offer.Status)

	require.NoError(t, svc.applyDecision(ctx, offer, models.OfferStatusAccepted))
	require.Equal(t, models.OfferStatusAccepted, offer.Status)

	// Round trip: the parent listing left the open market.
	listing, err := db.GetListingByID(ctx, pool, listingID)
	require.NoError(t, err)
	require.Equal(t, models.ListingStatusPending, listing.Status)

	stored, err := db.GetOfferByID(ctx, pool, offerID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusAccepted, stored.Status)
}

func TestRejectingOfferLeavesListingAvailable(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	sellerID := insertTestUser(t, pool)
	buyerID := insertTestUser(t, pool)

	listingID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO listings (id, seller_id, title, price, images, category, longitude, latitude)
		VALUES ($1, $2, 'Brass compass', 45, '{img1}', 'curios', -73.97, 40.77)
	`, listingID, sellerID)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	})

	offerID := uuid.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO offers (id, listing_id, buyer_id, seller_id, original_price, offer_price, expires_at)
		VALUES ($1, $2, $3, $4, 45, 30, $5)
	`, offerID, listingID, buyerID, sellerID, time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	})

	svc := NewOfferService(&config.Config{OfferExpiryDays: 7}, pool, nil)

	offer, err := db.GetOfferByID(ctx, pool, offerID)
	require.NoError(t, err)
	require.NoError(t, svc.applyDecision(ctx, offer, models.OfferStatusRejected))

	listing, err := db.GetListingByID(ctx, pool, listingID)
	require.NoError(t, err)
	require.Equal(t, models.ListingStatusAvailable, listing.Status)
}
