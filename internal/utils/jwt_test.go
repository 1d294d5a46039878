package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New().String()

	token, err := svc.GenerateAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New().String()

	token, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := svc.ExtractUserIDFromRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New().String()

	refresh, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)
	_, err = svc.ExtractUserID(refresh)
	assert.Error(t, err, "refresh token must not validate as an access token")

	access, err := svc.GenerateAccessToken(userID)
	require.NoError(t, err)
	_, err = svc.ExtractUserIDFromRefresh(access)
	assert.Error(t, err, "access token must not validate as a refresh token")
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New().String())
	require.NoError(t, err)

	_, err = svc.ExtractUserID(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ExtractUserID("not-a-token")
	assert.Error(t, err)
}
