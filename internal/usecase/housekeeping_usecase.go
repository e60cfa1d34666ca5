package usecase

import "context"

// PurgeResult counts the rows removed by one housekeeping pass.
type PurgeResult struct {
	RefreshTokens      int64
	PasswordResets     int64
	EmailVerifications int64
}

// HousekeepingUsecase removes ledger rows that can no longer be used.
type HousekeepingUsecase interface {
	PurgeExpired(ctx context.Context) (*PurgeResult, error)
}
