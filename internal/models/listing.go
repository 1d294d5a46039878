package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses.
const (
	ListingStatusAvailable = "available"
	ListingStatusPending   = "pending"
	ListingStatusSold      = "sold"
)

// ValidListingStatus reports whether s is an accepted listing status.
func ValidListingStatus(s string) bool {
	return s == ListingStatusAvailable || s == ListingStatusPending || s == ListingStatusSold
}

// ListingMetrics tracks engagement counters on a listing.
type ListingMetrics struct {
	Views  int `json:"views"`
	Offers int `json:"offers"`
	Saves  int `json:"saves"`
}

// Listing represents an item for sale.
type Listing struct {
	ID          uuid.UUID      `json:"id"`
	SellerID    uuid.UUID      `json:"seller_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price"`
	Images      []string       `json:"images"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Location    Location       `json:"location"`
	Status      string         `json:"status"`
	Featured    bool           `json:"featured"`
	Metrics     ListingMetrics `json:"metrics"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Joined for API responses.
	Seller *UserSummary `json:"seller,omitempty"`
}

// ListingSummary is the reduced listing payload embedded in offers and
// conversations.
type ListingSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	Images []string  `json:"images"`
	Status string    `json:"status"`
}
