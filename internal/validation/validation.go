// Package validation holds the account field format rules shared by the
// auth flows and the HTTP layer.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	domainerrors "sentinel/internal/domain/errors"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 8
	// MaxPasswordBytes is bcrypt's input limit; longer passwords would be truncated.
	MaxPasswordBytes = 72
	MaxEmailLen    = 254
)

var (
	// EmailPattern is a pragmatic address check: local part, "@", dotted domain with a 2+ letter TLD.
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// UsernamePattern allows ASCII letters, digits and underscore, 3 to 20 characters.
	UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

// NormalizeEmail trims and lowercases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address format.
func ValidateEmail(email string) error {
	if email == "" {
		return domainerrors.ErrInvalidEmail.WithDetails("email cannot be empty")
	}
	if len(email) > MaxEmailLen || !EmailPattern.MatchString(email) {
		return domainerrors.ErrInvalidEmail
	}

	return nil
}

// ValidateUsername checks length and character set.
func ValidateUsername(username string) error {
	if username == "" {
		return domainerrors.ErrInvalidUsername.WithDetails("username cannot be empty")
	}
	if !UsernamePattern.MatchString(username) {
		return domainerrors.ErrInvalidUsername
	}

	return nil
}

// ValidatePassword requires 8 characters to 72 bytes with one letter and one digit.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLen {
		return domainerrors.ErrWeakPassword.WithDetails("password is too short")
	}
	if len(password) > MaxPasswordBytes {
		return domainerrors.ErrWeakPassword.WithDetails("password must be at most 72 bytes")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		return domainerrors.ErrWeakPassword.WithDetails("password must contain a letter")
	}
	if !hasDigit {
		return domainerrors.ErrWeakPassword.WithDetails("password must contain a digit")
	}

	return nil
}
