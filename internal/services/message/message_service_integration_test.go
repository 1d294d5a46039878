package message

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/trove-app/trove-api/internal/config"
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

func TestFindOrCreateConversationIdempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	alice := insertTestUser(t, pool)
	bob := insertTestUser(t, pool)
	t.Cleanup(func() {
		pool.Exec(ctx, `
			DELETE FROM conversations
			WHERE user_a_id IN ($1, $2) OR user_b_id IN ($1, $2)
		`, alice, bob)
	})

	svc := NewMessageService(&config.Config{}, pool, nil)

	first, err := svc.findOrCreateConversation(ctx, alice, bob, nil, nil)
	require.NoError(t, err)

	// Same pair again resolves to the same row.
	again, err := svc.findOrCreateConversation(ctx, alice, bob, nil, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	// Order of the participants does not matter.
	reversed, err := svc.findOrCreateConversation(ctx, bob, alice, nil, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, reversed.ID)
}

func TestFindOrCreateConversationPerListing(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	alice := insertTestUser(t, pool)
	bob := insertTestUser(t, pool)

	listingID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO listings (id, seller_id, title, price, images, category, longitude, latitude)
		VALUES ($1, $2, 'Mantel clock', 80, '{img1}', 'clocks', -73.97, 40.77)
	`, listingID, bob)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `
			DELETE FROM conversations
			WHERE user_a_id IN ($1, $2) OR user_b_id IN ($1, $2)
		`, alice, bob)
		pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	})

	svc := NewMessageService(&config.Config{}, pool, nil)

	general, err := svc.findOrCreateConversation(ctx, alice, bob, nil, nil)
	require.NoError(t, err)

	// A listing thread is a separate conversation for the same pair.
	scoped, err := svc.findOrCreateConversation(ctx, alice, bob, &listingID, nil)
	require.NoError(t, err)
	require.NotEqual(t, general.ID, scoped.ID)

	scopedAgain, err := svc.findOrCreateConversation(ctx, bob, alice, &listingID, nil)
	require.NoError(t, err)
	require.Equal(t, scoped.ID, scopedAgain.ID)
}
