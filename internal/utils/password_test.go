package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}

func TestGenerateResetToken(t *testing.T) {
	token, tokenHash, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	// The stored digest must match what presenting the raw token produces.
	assert.Equal(t, tokenHash, HashResetToken(token))

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
