package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose identifies which single-use ledger a token belongs to.
type TokenPurpose string

const (
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
	TokenPurposeEmailVerification TokenPurpose = "email_verification"
)

// OneTimeToken is a ledger row backing a password reset or email verification token.
// The raw token is never stored; Used flips from false to true exactly once.
type OneTimeToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   TokenPurpose
	TokenHash string
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the token can no longer be consumed at now.
func (t *OneTimeToken) IsExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
