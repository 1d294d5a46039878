package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer statuses. Accepted, rejected and expired are terminal.
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusExpired   = "expired"
	OfferStatusCountered = "countered"
)

// CounterOffer is one entry in an offer's append-only negotiation history.
type CounterOffer struct {
	Price     float64   `json:"price"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Offer represents a buyer's price proposal on a listing.
type Offer struct {
	ID            uuid.UUID      `json:"id"`
	ListingID     uuid.UUID      `json:"listing_id"`
	BuyerID       uuid.UUID      `json:"buyer_id"`
	SellerID      uuid.UUID      `json:"seller_id"`
	OriginalPrice float64        `json:"original_price"`
	OfferPrice    float64        `json:"offer_price"`
	Status        string         `json:"status"`
	CounterOffers []CounterOffer `json:"counter_offers"`
	ExpiresAt     time.Time      `json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Joined for API responses.
	Listing *ListingSummary `json:"listing,omitempty"`
	Buyer   *UserSummary    `json:"buyer,omitempty"`
}

// ValidOfferDecision reports whether s is a status the seller may set
// directly (counter-offers go through their own path).
func ValidOfferDecision(s string) bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected || s == OfferStatusExpired
}

// Negotiable reports whether the offer can still be acted on. Both
// pending and countered offers accept further transitions; accepted,
// rejected and expired are terminal.
func (o *Offer) Negotiable() bool {
	return o.Status == OfferStatusPending || o.Status == OfferStatusCountered
}

// AddCounter appends a counter-offer, flips the status to countered and
// pushes the expiry forward. The history is append-only and chronological;
// no monotonicity is enforced on the price.
func (o *Offer) AddCounter(price float64, userID uuid.UUID, now time.Time, expiryDays int) CounterOffer {
	entry := CounterOffer{Price: price, UserID: userID, Timestamp: now}
	o.CounterOffers = append(o.CounterOffers, entry)
	o.Status = OfferStatusCountered
	o.ExpiresAt = now.Add(time.Duration(expiryDays) * 24 * time.Hour)
	return entry
}

// Party qualifies a user against the offer's two sides.
func (o *Offer) Party(userID uuid.UUID) (isBuyer, isSeller bool) {
	return o.BuyerID == userID, o.SellerID == userID
}
