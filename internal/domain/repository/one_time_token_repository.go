package repository

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for single-use token ledgers.
var (
	// ErrOneTimeTokenNotFound is returned when no ledger row matches the digest.
	ErrOneTimeTokenNotFound = errors.New("one-time token not found")
	// ErrOneTimeTokenUsed is returned by MarkUsed when the row was already consumed.
	ErrOneTimeTokenUsed = errors.New("one-time token already used")
)

// OneTimeTokenRepository is a single-use token ledger. Password resets and
// email verifications each get their own instance backed by their own table.
type OneTimeTokenRepository interface {
	// Create persists a new, unused ledger row.
	Create(ctx context.Context, token *entity.OneTimeToken) error

	// FindByHash retrieves a ledger row by token digest, used or not.
	FindByHash(ctx context.Context, tokenHash string) (*entity.OneTimeToken, error)

	// MarkUsed flips used from false to true. Exactly one concurrent caller
	// succeeds; every other caller gets ErrOneTimeTokenUsed.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// DeleteStale removes rows that were consumed or expired before the cutoff.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
