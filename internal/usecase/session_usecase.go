// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"sentinel/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase defines the interface for session management operations.
type SessionUsecase interface {
	// ListSessions returns the user's live sessions, newest first.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
	// RevokeAllSessions logs the user out of every device and returns how many sessions ended.
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error)
}
