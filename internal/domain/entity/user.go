package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus is the administrative state of an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// IsValid checks if the status is a known value.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

// User is the identity record every auth operation reads or mutates.
type User struct {
	ID                       uuid.UUID  // The Global Unique Identifier (GUID) for the user.
	Email                    string     // Unique login identifier.
	Username                 string     // Unique public handle.
	PasswordHash             *string    // bcrypt hash; nil for accounts linked only through an OAuth provider.
	OAuthProvider            *string    // Provider name for OAuth-linked accounts, e.g. "google".
	Role                     Role       // Authorization role embedded in access tokens.
	Status                   UserStatus // Only active accounts may log in or refresh.
	EmailVerified            bool       // Set once the verification token is consumed.
	FailedLoginAttempts      int        // Consecutive failed password checks since the last success or reset.
	LockedUntil              *time.Time // Login is rejected while this lies in the future.
	ResetTokenHash           *string    // Digest of the outstanding password reset token.
	ResetTokenExpires        *time.Time
	VerificationTokenHash    *string // Digest of the outstanding email verification token.
	VerificationTokenExpires *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsActive reports whether the account status permits authentication.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLockedAt reports whether the lockout window is still open at now.
func (u *User) IsLockedAt(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
