package repository

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/errors"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no non-revoked session matches.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository is the session ledger.
// Rows are only ever created or flipped to revoked; nothing un-revokes a session.
type RefreshTokenRepository interface {
	// Create persists a new session. A user may hold any number of sessions.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindValidByHash returns the non-revoked session with the given token digest.
	// Expiry is not filtered here; callers compare ExpiresAt themselves.
	FindValidByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindActiveByUserID lists the user's non-revoked sessions that expire after now, newest first.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error)

	// RevokeByHash marks the session revoked. It reports whether a row matched,
	// without distinguishing an already revoked row from a fresh revocation.
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)

	// RevokeByID revokes one of the user's sessions by its ID.
	RevokeByID(ctx context.Context, userID, id uuid.UUID) (bool, error)

	// RevokeAllByUserID revokes every non-revoked session of the user and returns how many changed.
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired removes sessions whose expiry is before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
