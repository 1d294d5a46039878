package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(uuid.New().String()))
	assert.False(t, IsValidID("12345"))
	assert.False(t, IsValidID(""))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("dealer@antiques.example"))
	assert.True(t, IsValidEmail("a.b+c@d.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("spaces in@addr.example"))
	assert.False(t, IsValidEmail("missing@tld"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+12025550147"))
	assert.True(t, IsValidPhone("2025550147"))
	assert.False(t, IsValidPhone("12345"))
	assert.False(t, IsValidPhone("+1 202 555 0147"))
	assert.False(t, IsValidPhone("12345678901234567"))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Abcdefg1"))
	assert.False(t, IsStrongPassword("Abc1"), "too short")
	assert.False(t, IsStrongPassword("abcdefg1"), "no uppercase")
	assert.False(t, IsStrongPassword("ABCDEFG1"), "no lowercase")
	assert.False(t, IsStrongPassword("Abcdefgh"), "no digit")
}

func TestIsValidCoordinates(t *testing.T) {
	assert.True(t, IsValidCoordinates([]float64{-73.97, 40.77}))
	assert.True(t, IsValidCoordinates([]float64{180, -90}))
	assert.False(t, IsValidCoordinates([]float64{-181, 40}))
	assert.False(t, IsValidCoordinates([]float64{0, 91}))
	assert.False(t, IsValidCoordinates([]float64{1}))
	assert.False(t, IsValidCoordinates(nil))
}
