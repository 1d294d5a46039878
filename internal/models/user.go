package models

import (
	"time"

	"github.com/google/uuid"
)

// User types.
const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
	UserTypeBoth   = "both"
)

// Subscription statuses.
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// Location is a point with an optional human-readable address.
// Coordinates are [longitude, latitude].
type Location struct {
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
}

// Preferences drive the personalized discovery feed.
type Preferences struct {
	Categories   []string   `json:"categories"`
	PriceRange   PriceRange `json:"price_range"`
	SearchRadius float64    `json:"search_radius"` // miles
}

// PriceRange bounds listing prices in the discovery feed.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultPreferences mirrors the defaults applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Categories:   []string{},
		PriceRange:   PriceRange{Min: 0, Max: 10000},
		SearchRadius: 50,
	}
}

// User represents an account. The password hash and reset token fields
// are never serialized outward.
type User struct {
	ID                     uuid.UUID   `json:"id"`
	Email                  string      `json:"email"`
	PasswordHash           string      `json:"-"`
	Name                   string      `json:"name"`
	Phone                  string      `json:"phone,omitempty"`
	Location               Location    `json:"location"`
	UserType               string      `json:"user_type"`
	SubscriptionStatus     string      `json:"subscription_status"`
	SubscriptionExpiryDate *time.Time  `json:"subscription_expiry_date,omitempty"`
	Preferences            Preferences `json:"preferences"`
	ResetPasswordToken     string      `json:"-"`
	ResetPasswordExpires   *time.Time  `json:"-"`
	LastLogin              *time.Time  `json:"last_login,omitempty"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// IsSeller reports whether the user may create listings and act as a merchant.
func (u *User) IsSeller() bool {
	return u.UserType == UserTypeSeller || u.UserType == UserTypeBoth
}

// ValidUserType reports whether t is one of the accepted account types.
func ValidUserType(t string) bool {
	return t == UserTypeBuyer || t == UserTypeSeller || t == UserTypeBoth
}

// NormalizeUserType maps an omitted account type to the buyer default.
func NormalizeUserType(t string) string {
	if t == "" {
		return UserTypeBuyer
	}
	return t
}

// ValidSubscriptionStatus reports whether s is an accepted subscription tier.
func ValidSubscriptionStatus(s string) bool {
	return s == SubscriptionFree || s == SubscriptionPremium
}

// UserSummary is the minimal user payload embedded in other resources.
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
