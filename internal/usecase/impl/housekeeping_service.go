package impl

import (
	"context"
	"log/slog"
	"time"

	"sentinel/config"
	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"
)

const defaultHousekeepingRetention = 24 * time.Hour

// housekeepingService implements the HousekeepingUsecase interface.
type housekeepingService struct {
	txManager repository.TransactionManager
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewHousekeepingService is the constructor for housekeepingService.
func NewHousekeepingService(txManager repository.TransactionManager, cfg *config.Config, logger *slog.Logger) usecase.HousekeepingUsecase {
	retention := defaultHousekeepingRetention
	if cfg != nil && cfg.Housekeeping != nil && cfg.Housekeeping.Retention > 0 {
		retention = cfg.Housekeeping.Retention
	}

	return &housekeepingService{
		txManager: txManager,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// PurgeExpired deletes sessions and one-time tokens that stopped being usable
// more than the retention period ago.
func (srv *housekeepingService) PurgeExpired(ctx context.Context) (*usecase.PurgeResult, error) {
	cutoff := srv.now().Add(-srv.retention)
	result := &usecase.PurgeResult{}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error

		if result.RefreshTokens, err = repoFactory.NewRefreshTokenRepository().DeleteExpired(ctx, cutoff); err != nil {
			return errors.Wrap(err, "failed to purge refresh tokens")
		}
		if result.PasswordResets, err = repoFactory.NewPasswordResetRepository().DeleteStale(ctx, cutoff); err != nil {
			return errors.Wrap(err, "failed to purge password resets")
		}
		if result.EmailVerifications, err = repoFactory.NewEmailVerificationRepository().DeleteStale(ctx, cutoff); err != nil {
			return errors.Wrap(err, "failed to purge email verifications")
		}

		return nil
	})
	if err != nil {
		srv.logger.Error("Housekeeping purge failed", slog.Any("error", err))

		return nil, err
	}

	srv.logger.Info("Housekeeping purge finished",
		slog.Time("cutoff", cutoff),
		slog.Int64("refresh_tokens", result.RefreshTokens),
		slog.Int64("password_resets", result.PasswordResets),
		slog.Int64("email_verifications", result.EmailVerifications),
	)

	return result, nil
}
