package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService issues and validates the access/refresh token pair. The two
// token kinds are signed with separate secrets so a refresh token can
// never pass as an access token.
type JWTService struct {
	secretKey        string
	refreshSecretKey string
	accessTTL        time.Duration
	refreshTTL       time.Duration
}

// NewJWTService creates a new JWTService.
func NewJWTService(secretKey, refreshSecretKey string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secretKey:        secretKey,
		refreshSecretKey: refreshSecretKey,
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
	}
}

// GenerateAccessToken creates a short-lived access token for a user.
func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	return s.generate(userID, s.secretKey, s.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token for a user.
func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	return s.generate(userID, s.refreshSecretKey, s.refreshTTL)
}

func (s *JWTService) generate(userID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ExtractUserID validates an access token and returns the user id claim.
func (s *JWTService) ExtractUserID(tokenString string) (string, error) {
	return extract(tokenString, s.secretKey)
}

// ExtractUserIDFromRefresh validates a refresh token and returns the user
// id claim.
func (s *JWTService) ExtractUserIDFromRefresh(tokenString string) (string, error) {
	return extract(tokenString, s.refreshSecretKey)
}

func extract(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("token missing user_id claim")
	}

	return userID, nil
}
