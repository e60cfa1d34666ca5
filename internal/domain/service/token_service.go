package service

import (
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminators carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Validation failures. Callers outside the issuer treat both as unauthenticated.
var (
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
)

// Claims defines the custom claims for the JWT tokens.
// Email and Role are only present on access tokens.
type Claims struct {
	Email string      `json:"email,omitempty"`
	Role  entity.Role `json:"role,omitempty"`
	Type  string      `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrTokenMalformed, "subject is not a user id")
	}

	return id, nil
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateAccessToken signs a short-lived access token for the user.
	GenerateAccessToken(userID uuid.UUID, email string, role entity.Role) (string, error)

	// GenerateRefreshToken signs a long-lived refresh token for the user.
	GenerateRefreshToken(userID uuid.UUID) (string, error)

	// ValidateToken checks signature and expiry. It returns ErrTokenExpired or ErrTokenMalformed on failure.
	ValidateToken(tokenString string) (*Claims, error)

	// HashToken returns the hex SHA-256 digest used to store and look up tokens.
	HashToken(token string) string

	// GetAccessTokenDuration returns the configured lifetime of access tokens.
	GetAccessTokenDuration() time.Duration

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}

// OpaqueTokenGenerator produces high-entropy URL-safe random tokens with no embedded claims.
type OpaqueTokenGenerator interface {
	Generate() (string, error)
}
