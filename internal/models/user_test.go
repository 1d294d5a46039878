package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUserTypeDefaultsToBuyer(t *testing.T) {
	assert.Equal(t, UserTypeBuyer, NormalizeUserType(""))
	assert.Equal(t, UserTypeSeller, NormalizeUserType(UserTypeSeller))
	assert.Equal(t, UserTypeBoth, NormalizeUserType(UserTypeBoth))

	// Unknown values pass through so registration still rejects them.
	assert.Equal(t, "vendor", NormalizeUserType("vendor"))
	assert.False(t, ValidUserType("vendor"))
	assert.True(t, ValidUserType(NormalizeUserType("")))
}

func TestIsSeller(t *testing.T) {
	assert.False(t, (&User{UserType: UserTypeBuyer}).IsSeller())
	assert.True(t, (&User{UserType: UserTypeSeller}).IsSeller())
	assert.True(t, (&User{UserType: UserTypeBoth}).IsSeller())
}
