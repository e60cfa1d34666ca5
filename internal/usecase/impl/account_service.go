package impl

import (
	"context"
	"log/slog"
	"time"

	"sentinel/config"
	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/domain/repository"
	"sentinel/internal/domain/service"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"
	"sentinel/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// errCurrentPasswordMismatch stays inside this package; callers see the lockout outcome instead.
var errCurrentPasswordMismatch = errors.New("current password mismatch")

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	hasher        service.PasswordHasher
	emailSender   service.EmailSender
	lockout       *lockoutGuard
	verifications *oneTimeTokens
	links         mailLinks
	logger        *slog.Logger
	now           func() time.Time
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	OpaqueTokens service.OpaqueTokenGenerator
	EmailSender  service.EmailSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return newAccountService(params)
}

func newAccountService(params AccountServiceParams) *accountService {
	srv := &accountService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		hasher:      params.Hasher,
		emailSender: params.EmailSender,
		links:       newMailLinks(params.Config),
		logger:      params.Logger,
		now:         time.Now,
	}

	clock := func() time.Time { return srv.now() }

	var verificationTTL time.Duration
	if params.Config != nil && params.Config.Auth != nil {
		verificationTTL = params.Config.Auth.VerificationTokenTTL
	}

	srv.lockout = newLockoutGuard(params.Config, clock)
	srv.verifications = newEmailVerificationTokens(params.OpaqueTokens, params.TokenService, verificationTTL, clock)

	return srv
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetUser loads a user by ID.
func (srv *accountService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

// ChangePassword replaces the password of a signed-in user and ends all of their sessions.
func (srv *accountService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if err := validation.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		found, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if srv.lockout.IsLocked(found) {
			return domainerrors.ErrAccountLocked
		}
		// Accounts without a password may set their first one
		if found.HasPassword() && !srv.hasher.Check(input.CurrentPassword, *found.PasswordHash) {
			return errCurrentPasswordMismatch
		}

		found.PasswordHash = &hashedPassword
		if err := userRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		if _, err := repoFactory.NewRefreshTokenRepository().RevokeAllByUserID(ctx, found.ID); err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		user = found

		return srv.lockout.Reset(ctx, userRepo, found)
	})
	if errors.Is(err, errCurrentPasswordMismatch) {
		return srv.recordPasswordMismatch(ctx, input.UserID)
	}
	if err != nil {
		srv.log(ctx).Warn("Password change failed", slog.Any("user_id", input.UserID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password change transaction")
	}

	srv.log(ctx).Info("Password changed", slog.Any("user_id", user.ID))

	sendBestEffort(ctx, srv.log(ctx), "password_change", func(ctx context.Context) error {
		return srv.emailSender.SendPasswordChangeNotification(ctx, user.Email, user.Username)
	})

	return nil
}

// ChangeEmail moves the account to a new address, which then needs verifying again.
func (srv *accountService) ChangeEmail(ctx context.Context, input *usecase.ChangeEmailInput) (*entity.User, error) {
	newEmail := validation.NormalizeEmail(input.NewEmail)
	if err := validation.ValidateEmail(newEmail); err != nil {
		return nil, err
	}

	var user *entity.User
	var oldEmail, rawToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		found, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if srv.lockout.IsLocked(found) {
			return domainerrors.ErrAccountLocked
		}
		if !found.HasPassword() {
			return domainerrors.ErrPasswordLoginUnavailable
		}
		if !srv.hasher.Check(input.Password, *found.PasswordHash) {
			return errCurrentPasswordMismatch
		}
		if found.Email == newEmail {
			return domainerrors.ErrValidationFailed.WithDetails("new email matches the current one")
		}

		if _, err := userRepo.FindByEmail(ctx, newEmail); err == nil {
			return domainerrors.ErrEmailAlreadyExists
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		oldEmail = found.Email
		found.Email = newEmail
		found.EmailVerified = false
		if err := userRepo.Update(ctx, found); err != nil {
			if errors.Is(err, repository.ErrUserEmailExists) {
				return domainerrors.ErrEmailAlreadyExists
			}

			return errors.Wrap(err, "failed to update email")
		}

		// Issue persists the user again with the new verification digest
		rawToken, err = srv.verifications.Issue(ctx, repoFactory, found)
		if err != nil {
			return err
		}

		user = found

		return nil
	})
	if errors.Is(err, errCurrentPasswordMismatch) {
		return nil, srv.recordPasswordMismatch(ctx, input.UserID)
	}
	if err != nil {
		srv.log(ctx).Warn("Email change failed", slog.Any("user_id", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute email change transaction")
	}

	srv.log(ctx).Info("Email changed", slog.Any("user_id", user.ID))

	sendBestEffort(ctx, srv.log(ctx), "email_change", func(ctx context.Context) error {
		return srv.emailSender.SendEmailChangeNotification(ctx, oldEmail, user.Username, user.Email)
	})
	sendBestEffort(ctx, srv.log(ctx), "verification", func(ctx context.Context) error {
		return srv.emailSender.SendVerificationEmail(ctx, user.Email, user.Username, srv.links.verifyEmail(rawToken))
	})

	return user, nil
}

// recordPasswordMismatch counts a wrong current password against the same lockout as login.
// It runs after the rolled-back transaction so the count survives.
func (srv *accountService) recordPasswordMismatch(ctx context.Context, userID uuid.UUID) error {
	locked, err := srv.lockout.RegisterFailure(ctx, srv.userRepo, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to register failed password check", slog.Any("user_id", userID), slog.Any("error", err))

		return err
	}

	if locked {
		srv.log(ctx).Warn("Account locked after failed password checks", slog.Any("user_id", userID))

		return domainerrors.ErrAccountLocked
	}

	return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password mismatch")
}
