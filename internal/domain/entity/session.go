package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized user session.
// Only the SHA-256 digest of the raw token is kept; revocation is one-way.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // Hex SHA-256 of the raw refresh token, used for every lookup.
	IsRevoked bool      // Once true, the session can never be used again.
	ExpiresAt time.Time // Ledger-side expiry, checked together with the token's own exp claim.
	IPAddress string    // Client address seen when the session was created.
	UserAgent string    // Client user agent seen when the session was created.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// IsExpiredAt reports whether the session's ledger expiry has passed.
func (t *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// LoginHistory is an append-only audit record of a login attempt.
type LoginHistory struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	CreatedAt     time.Time
}

// Login failure reasons recorded in LoginHistory.
const (
	LoginFailureInvalidPassword = "invalid_password"
	LoginFailureAccountInactive = "account_inactive"
)
