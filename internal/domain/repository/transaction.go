package repository

import "context"

// TransactionManager runs a unit of work atomically.
// fn's error is returned as is after the rollback.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory builds repositories bound to the running transaction.
type RepositoryFactory interface {
	NewUserRepository() UserRepository
	NewRefreshTokenRepository() RefreshTokenRepository
	NewPasswordResetRepository() OneTimeTokenRepository
	NewEmailVerificationRepository() OneTimeTokenRepository
	NewLoginHistoryRepository() LoginHistoryRepository
}
