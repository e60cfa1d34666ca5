package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListSessions retrieves all live sessions for a user.
func (srv *sessionService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	srv.log(ctx).Debug("Listing sessions", slog.Any("user_id", userID))

	var sessions []*entity.RefreshToken

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// 1. Verify user exists
		if err := ensureUserExists(ctx, repoFactory.NewUserRepository(), userID); err != nil {
			return err
		}

		// 2. Collect non-revoked, unexpired sessions
		var err error
		sessions, err = repoFactory.NewRefreshTokenRepository().FindActiveByUserID(ctx, userID, srv.now())
		if err != nil {
			return errors.Wrap(err, "failed to find refresh tokens")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list sessions", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, errors.Wrap(err, "failed to list sessions")
	}
	srv.log(ctx).Debug("Successfully listed sessions", slog.Any("user_id", userID), slog.Int("count", len(sessions)))

	return sessions, nil
}

// RevokeSession revokes one of the user's own sessions.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	srv.log(ctx).Info("Revoking session", slog.Any("user_id", userID), slog.Any("session_id", sessionID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		matched, err := repoFactory.NewRefreshTokenRepository().RevokeByID(ctx, userID, sessionID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}

		// Another user's session looks exactly like a missing one
		if !matched {
			return domainerrors.ErrSessionNotFound
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to revoke session", slog.Any("error", err), slog.Any("user_id", userID), slog.Any("session_id", sessionID))

		return errors.Wrap(err, "failed to revoke session")
	}
	srv.log(ctx).Info("Successfully revoked session", slog.Any("user_id", userID), slog.Any("session_id", sessionID))

	return nil
}

// RevokeAllSessions revokes all sessions for a user.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	srv.log(ctx).Info("Revoking all sessions", slog.Any("user_id", userID))

	var revoked int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureUserExists(ctx, repoFactory.NewUserRepository(), userID); err != nil {
			return err
		}

		var err error
		revoked, err = repoFactory.NewRefreshTokenRepository().RevokeAllByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke all sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("error", err), slog.Any("user_id", userID))

		return 0, errors.Wrap(err, "failed to revoke all sessions")
	}
	srv.log(ctx).Info("Successfully revoked all sessions", slog.Any("user_id", userID), slog.Int64("count", revoked))

	return revoked, nil
}

func ensureUserExists(ctx context.Context, userRepo repository.UserRepository, userID uuid.UUID) error {
	if _, err := userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return errors.Wrap(err, "failed to find user")
	}

	return nil
}
