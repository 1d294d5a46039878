package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferNegotiable(t *testing.T) {
	offer := &Offer{Status: OfferStatusPending}
	assert.True(t, offer.Negotiable())

	offer.Status = OfferStatusCountered
	assert.True(t, offer.Negotiable())

	for _, terminal := range []string{OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired} {
		offer.Status = terminal
		assert.False(t, offer.Negotiable(), "status %s should be terminal", terminal)
	}
}

func TestValidOfferDecision(t *testing.T) {
	assert.True(t, ValidOfferDecision(OfferStatusAccepted))
	assert.True(t, ValidOfferDecision(OfferStatusRejected))
	assert.True(t, ValidOfferDecision(OfferStatusExpired))

	// Countering has its own path; pending is never set directly.
	assert.False(t, ValidOfferDecision(OfferStatusCountered))
	assert.False(t, ValidOfferDecision(OfferStatusPending))
	assert.False(t, ValidOfferDecision("sold"))
}

func TestOfferAddCounter(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	now := time.Now()

	offer := &Offer{
		BuyerID:    buyerID,
		SellerID:   sellerID,
		OfferPrice: 100,
		Status:     OfferStatusPending,
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	entry := offer.AddCounter(120, sellerID, now, 7)

	assert.Equal(t, OfferStatusCountered, offer.Status)
	require.Len(t, offer.CounterOffers, 1)
	assert.Equal(t, entry, offer.CounterOffers[0])
	assert.Equal(t, 120.0, entry.Price)
	assert.Equal(t, sellerID, entry.UserID)
	assert.Equal(t, now.Add(7*24*time.Hour), offer.ExpiresAt)
}

func TestOfferAddCounterAppendsChronologically(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	start := time.Now()

	offer := &Offer{BuyerID: buyerID, SellerID: sellerID, Status: OfferStatusPending}

	offer.AddCounter(120, sellerID, start, 7)
	offer.AddCounter(110, buyerID, start.Add(time.Hour), 7)
	// No monotonicity on price; moving backwards is allowed.
	offer.AddCounter(130, buyerID, start.Add(2*time.Hour), 7)

	require.Len(t, offer.CounterOffers, 3)
	assert.Equal(t, 120.0, offer.CounterOffers[0].Price)
	assert.Equal(t, 110.0, offer.CounterOffers[1].Price)
	assert.Equal(t, 130.0, offer.CounterOffers[2].Price)
	assert.Equal(t, OfferStatusCountered, offer.Status)

	// Every counter restarts the expiry window from its own timestamp.
	assert.Equal(t, start.Add(2*time.Hour).Add(7*24*time.Hour), offer.ExpiresAt)
}

func TestOfferParty(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	offer := &Offer{BuyerID: buyerID, SellerID: sellerID}

	isBuyer, isSeller := offer.Party(buyerID)
	assert.True(t, isBuyer)
	assert.False(t, isSeller)

	isBuyer, isSeller = offer.Party(sellerID)
	assert.False(t, isBuyer)
	assert.True(t, isSeller)

	isBuyer, isSeller = offer.Party(uuid.New())
	assert.False(t, isBuyer)
	assert.False(t, isSeller)
}
