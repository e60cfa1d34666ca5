// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserEmailExists is returned when the email unique constraint is violated.
	ErrUserEmailExists = errors.New("user email already exists")
	// ErrUsernameExists is returned when the username unique constraint is violated.
	ErrUsernameExists = errors.New("username already exists")
)

// LoginFailureState is the counter state written by a single atomic failure update.
type LoginFailureState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// UserRepository defines the standard operations for user persistence.
// Every lookup returns ErrUserNotFound instead of a nil user.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address (case-insensitive).
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername retrieves a single user by username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByResetTokenHash retrieves the user holding the given password reset token digest.
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.User, error)

	// FindByVerificationTokenHash retrieves the user holding the given verification token digest.
	FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// RegisterFailedLogin increments the failed attempt counter in one conditional
	// statement and sets locked_until to lockUntil once the counter reaches threshold.
	// It returns the state as written, so concurrent failures never lose an increment.
	RegisterFailedLogin(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*LoginFailureState, error)

	// ResetLoginFailures zeroes the failed attempt counter and clears locked_until.
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error
}
