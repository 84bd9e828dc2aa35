package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token class markers carried in the "typ" claim. Verification checks the
// marker so a refresh token can never pass where an access token is required.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims embedded in issued JWTs.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Type   string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a given user.
	GenerateTokens(userID uuid.UUID) (accessToken string, refreshToken string, err error)

	// GenerateAccessToken creates only a new access token, used by the refresh flow.
	GenerateAccessToken(userID uuid.UUID) (string, error)

	// ValidateAccessToken checks signature, expiry and token class of an access token.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks signature, expiry and token class of a refresh token.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// HashToken returns a hex SHA-256 digest of a raw token, suitable for storage.
	HashToken(tokenString string) string

	// AccessTokenDuration returns the configured lifetime of access tokens.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured lifetime of refresh tokens.
	RefreshTokenDuration() time.Duration
}
