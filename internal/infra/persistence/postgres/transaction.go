// Package postgres implements the repository ports on PostgreSQL through GORM.
package postgres

import (
	"context"

	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"

	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager is the constructor for the gorm-backed TransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute commits when fn returns nil and rolls back on an error or panic.
// The error returned by fn comes back unwrapped so callers can match domain errors.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	var fnErr error

	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(txRepositories{tx: tx})

		return fnErr
	})

	switch {
	case fnErr != nil:
		return fnErr
	case err != nil:
		return errors.Wrap(err, "transaction failed")
	default:
		return nil
	}
}

// txRepositories hands out repositories that share one *gorm.DB transaction.
type txRepositories struct {
	tx *gorm.DB
}

func (f txRepositories) NewUserRepository() repository.UserRepository {
	return NewUserRepository(f.tx)
}

func (f txRepositories) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return NewRefreshTokenRepository(f.tx)
}

func (f txRepositories) NewPasswordResetRepository() repository.OneTimeTokenRepository {
	return NewPasswordResetRepository(f.tx)
}

func (f txRepositories) NewEmailVerificationRepository() repository.OneTimeTokenRepository {
	return NewEmailVerificationRepository(f.tx)
}

func (f txRepositories) NewLoginHistoryRepository() repository.LoginHistoryRepository {
	return NewLoginHistoryRepository(f.tx)
}
