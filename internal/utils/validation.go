package utils

import (
	"regexp"

	"github.com/google/uuid"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// IsValidID reports whether s parses as a UUID.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone reports whether s looks like a phone number
// (10-15 digits, optional leading +).
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsStrongPassword enforces the password policy: at least 8 characters
// with an uppercase letter, a lowercase letter and a digit.
func IsStrongPassword(s string) bool {
	return len(s) >= 8 &&
		upperPattern.MatchString(s) &&
		lowerPattern.MatchString(s) &&
		digitPattern.MatchString(s)
}

// IsValidCoordinates reports whether coords is a [longitude, latitude]
// pair inside the valid ranges.
func IsValidCoordinates(coords []float64) bool {
	if len(coords) != 2 {
		return false
	}
	lng, lat := coords[0], coords[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}
