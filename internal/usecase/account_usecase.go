package usecase

import (
	"context"

	"sentinel/internal/domain/entity"

	"github.com/google/uuid"
)

// ChangePasswordInput changes the password of an authenticated user.
// CurrentPassword may be empty only for accounts that have no password yet.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangeEmailInput moves an authenticated user to a new address.
type ChangeEmailInput struct {
	UserID   uuid.UUID
	NewEmail string
	Password string
}

// AccountUsecase defines credential changes made by an already authenticated user.
type AccountUsecase interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
	ChangeEmail(ctx context.Context, input *ChangeEmailInput) (*entity.User, error)
}
