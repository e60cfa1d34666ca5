// Package impl contains the implementation of the application's business logic.
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

const dummyPassword = "sentinel-dummy-password-0"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	loginHistoryRepo repository.LoginHistoryRepository
	hasher           service.PasswordHasher
	dummyHash        string
	tokenService     service.TokenService
	emailSender      service.EmailSender
	lockout          *lockoutGuard
	resets           *oneTimeTokens
	verifications    *oneTimeTokens
	links            mailLinks
	background       *backgroundTasks
	logger           *slog.Logger
	now              func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	LoginHistoryRepo repository.LoginHistoryRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	OpaqueTokens     service.OpaqueTokenGenerator
	EmailSender      service.EmailSender
	Config           *config.Config
	Logger           *slog.Logger
	Lc               fx.Lifecycle `optional:"true"`
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return newAuthService(params)
}

func newAuthService(params AuthServiceParams) *authService {
	srv := &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		loginHistoryRepo: params.LoginHistoryRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		emailSender:      params.EmailSender,
		links:            newMailLinks(params.Config),
		background:       newBackgroundTasks(params.Logger),
		logger:           params.Logger,
		now:              time.Now,
	}

	// Login compares unknown emails against dummyHash.
	if params.Hasher != nil {
		if hash, err := params.Hasher.Hash(dummyPassword); err == nil {
			srv.dummyHash = hash
		}
	}

	if params.Lc != nil {
		params.Lc.Append(fx.Hook{
			OnStop: srv.background.Wait,
		})
	}

	// Collaborators read the clock through srv so tests can move it after construction.
	clock := func() time.Time { return srv.now() }

	var resetTTL, verificationTTL time.Duration
	if params.Config != nil && params.Config.Auth != nil {
		resetTTL = params.Config.Auth.ResetTokenTTL
		verificationTTL = params.Config.Auth.VerificationTokenTTL
	}

	srv.lockout = newLockoutGuard(params.Config, clock)
	srv.resets = newPasswordResetTokens(params.OpaqueTokens, params.TokenService, resetTTL, clock)
	srv.verifications = newEmailVerificationTokens(params.OpaqueTokens, params.TokenService, verificationTTL, clock)

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an active, unverified account and opens its first session.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := validation.NormalizeEmail(input.Email)
	if err := validateRegistration(email, input.Username, input.Password); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username))

	if err := srv.ensureAvailable(ctx, email, input.Username); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	newUser := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     input.Username,
		PasswordHash: &hashedPassword,
		Role:         entity.RoleUser,
		Status:       entity.UserStatusActive,
	}

	var output *usecase.AuthOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewUserRepository().Create(ctx, newUser); err != nil {
			switch {
			case errors.Is(err, repository.ErrUserEmailExists):
				return errors.Wrap(domainerrors.ErrEmailAlreadyExists, "email taken concurrently")
			case errors.Is(err, repository.ErrUsernameExists):
				return errors.Wrap(domainerrors.ErrUsernameAlreadyExists, "username taken concurrently")
			}

			return errors.Wrap(err, "failed to create user")
		}

		output, err = srv.openSession(ctx, repoFactory, newUser, input.Client)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Info("User registered", slog.Any("user_id", newUser.ID))

	srv.startVerification(ctx, newUser)

	return output, nil
}

func validateRegistration(email, username, password string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	return validation.ValidatePassword(password)
}

func (srv *authService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := srv.userRepo.FindByEmail(ctx, email); err == nil {
		return domainerrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check email availability")
	}

	if _, err := srv.userRepo.FindByUsername(ctx, username); err == nil {
		return domainerrors.ErrUsernameAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check username availability")
	}

	return nil
}

// Login authenticates with email and password.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := validation.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.Check(input.Password, srv.dummyHash)
			srv.log(ctx).Debug("Login for unknown email")

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "user not found")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	// 1. A locked account is rejected before the password is looked at
	if srv.lockout.IsLocked(user) {
		srv.log(ctx).Warn("Login attempt on locked account", slog.Any("user_id", user.ID))

		return nil, domainerrors.ErrAccountLocked
	}

	// 2. Accounts linked only through an OAuth provider have nothing to check
	if !user.HasPassword() {
		return nil, domainerrors.ErrPasswordLoginUnavailable
	}

	// 3. Verify the password; failures count toward the lockout
	if !srv.hasher.Check(input.Password, *user.PasswordHash) {
		return nil, srv.recordFailedLogin(ctx, user, input.Client)
	}

	// 4. Right password on a disabled account
	if !user.IsActive() {
		srv.appendLoginHistory(ctx, srv.loginHistoryRepo, user.ID, input.Client, entity.LoginFailureAccountInactive)

		return nil, domainerrors.ErrAccountInactive
	}

	var output *usecase.AuthOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.lockout.Reset(ctx, repoFactory.NewUserRepository(), user); err != nil {
			return err
		}

		output, err = srv.openSession(ctx, repoFactory, user, input.Client)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to complete login", slog.Any("user_id", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute login transaction")
	}

	srv.log(ctx).Info("User logged in", slog.Any("user_id", user.ID))

	return output, nil
}

// recordFailedLogin appends the audit row and bumps the lockout counter.
// Both writes stand on their own so the failure is kept although the request fails.
func (srv *authService) recordFailedLogin(ctx context.Context, user *entity.User, client usecase.ClientInfo) error {
	srv.appendLoginHistory(ctx, srv.loginHistoryRepo, user.ID, client, entity.LoginFailureInvalidPassword)

	locked, err := srv.lockout.RegisterFailure(ctx, srv.userRepo, user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to register failed login", slog.Any("user_id", user.ID), slog.Any("error", err))

		return err
	}

	if locked {
		srv.log(ctx).Warn("Account locked after failed logins", slog.Any("user_id", user.ID))

		return domainerrors.ErrAccountLocked
	}

	return errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
}

// appendLoginHistory writes a failed attempt. Audit write errors never change the login outcome.
func (srv *authService) appendLoginHistory(ctx context.Context, repo repository.LoginHistoryRepository, userID uuid.UUID, client usecase.ClientInfo, reason string) {
	record := &entity.LoginHistory{
		UserID:        userID,
		IPAddress:     client.IPAddress,
		UserAgent:     client.UserAgent,
		Success:       false,
		FailureReason: reason,
	}
	if err := repo.Append(ctx, record); err != nil {
		srv.log(ctx).Error("Failed to append login history", slog.Any("user_id", userID), slog.Any("error", err))
	}
}

// openSession issues a token pair, records the session and the successful login.
func (srv *authService) openSession(ctx context.Context, repoFactory repository.RepositoryFactory, user *entity.User, client usecase.ClientInfo) (*usecase.AuthOutput, error) {
	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenGenerationFailed, err.Error())
	}

	refreshToken, err := srv.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenGenerationFailed, err.Error())
	}

	session := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: srv.now().Add(srv.tokenService.GetRefreshTokenDuration()),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := repoFactory.NewRefreshTokenRepository().Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	record := &entity.LoginHistory{
		UserID:    user.ID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Success:   true,
	}
	if err := repoFactory.NewLoginHistoryRepository().Append(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to append login history")
	}

	return &usecase.AuthOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    srv.tokenService.GetAccessTokenDuration(),
		User:         user,
	}, nil
}

// RefreshAccessToken exchanges a live refresh token for a new access token.
// The refresh token itself is returned to the client unchanged.
func (srv *authService) RefreshAccessToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Debug("Refresh token failed validation", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}
	if claims.Type != service.TokenTypeRefresh {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "not a refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}

	session, err := srv.refreshTokenRepo.FindValidByHash(ctx, srv.tokenService.HashToken(input.RefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			srv.log(ctx).Info("Refresh with revoked or unknown session", slog.Any("user_id", userID))

			return nil, domainerrors.ErrRefreshTokenRevoked
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	// The signed expiry already passed validation; the ledger expiry must agree.
	if session.UserID != userID || session.IsExpiredAt(srv.now()) {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "session expired or owned by another user")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}
	if !user.IsActive() {
		return nil, domainerrors.ErrAccountInactive
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenGenerationFailed, err.Error())
	}

	return &usecase.RefreshTokenOutput{
		AccessToken: accessToken,
		ExpiresIn:   srv.tokenService.GetAccessTokenDuration(),
	}, nil
}

// Logout revokes the session behind the refresh token. Repeating it is harmless.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) (bool, error) {
	if input.RefreshToken == "" {
		return false, nil
	}

	revoked, err := srv.refreshTokenRepo.RevokeByHash(ctx, srv.tokenService.HashToken(input.RefreshToken))
	if err != nil {
		srv.log(ctx).Error("Failed to revoke refresh token", slog.Any("error", err))

		return false, errors.Wrap(err, "failed to revoke refresh token")
	}

	srv.log(ctx).Debug("Logout processed", slog.Bool("matched", revoked))

	return revoked, nil
}

// ForgotPassword mails a reset link when the address belongs to an active account.
// The response never reveals whether it did.
func (srv *authService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) (*usecase.MessageOutput, error) {
	generic := &usecase.MessageOutput{Message: usecase.MsgPasswordResetRequested}

	user, err := srv.userRepo.FindByEmail(ctx, validation.NormalizeEmail(input.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Error("Failed to look up user for password reset", slog.Any("error", err))
		}

		return generic, nil
	}
	if !user.IsActive() {
		return generic, nil
	}

	// Issued and mailed off the request path.
	srv.background.Go(ctx, "password_reset", func(ctx context.Context) error {
		return srv.issueAndSendReset(ctx, user)
	})

	return generic, nil
}

func (srv *authService) issueAndSendReset(ctx context.Context, user *entity.User) error {
	var rawToken string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		rawToken, err = srv.resets.Issue(ctx, repoFactory, user)

		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to issue password reset token")
	}

	sendBestEffort(ctx, srv.log(ctx), "password_reset", func(ctx context.Context) error {
		return srv.emailSender.SendPasswordResetEmail(ctx, user.Email, user.Username, srv.links.resetPassword(rawToken))
	})

	return nil
}

// ResetPassword consumes a reset token, sets the new password and ends every session.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (*usecase.MessageOutput, error) {
	if err := validation.ValidatePassword(input.NewPassword); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	var user *entity.User
	var revoked int64
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, row, err := srv.resets.Lookup(ctx, repoFactory, input.Token)
		if err != nil {
			return err
		}
		if err := srv.resets.Consume(ctx, repoFactory, found, row); err != nil {
			return err
		}

		userRepo := repoFactory.NewUserRepository()
		found.PasswordHash = &hashedPassword
		if err := userRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		revoked, err = repoFactory.NewRefreshTokenRepository().RevokeAllByUserID(ctx, found.ID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		user = found

		return srv.lockout.Reset(ctx, userRepo, found)
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset", slog.Any("user_id", user.ID), slog.Int64("revoked_sessions", revoked))

	sendBestEffort(ctx, srv.log(ctx), "password_change", func(ctx context.Context) error {
		return srv.emailSender.SendPasswordChangeNotification(ctx, user.Email, user.Username)
	})

	return &usecase.MessageOutput{Message: usecase.MsgPasswordReset}, nil
}

// VerifyResetToken checks a reset token without consuming it.
func (srv *authService) VerifyResetToken(ctx context.Context, token string) (*usecase.VerifyResetTokenOutput, error) {
	var email string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, _, err := srv.resets.Lookup(ctx, repoFactory, token)
		if err != nil {
			return err
		}
		email = user.Email

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &usecase.VerifyResetTokenOutput{Valid: true, Email: email}, nil
}

// SendVerificationEmail starts a verification for a signed-in user.
func (srv *authService) SendVerificationEmail(ctx context.Context, userID uuid.UUID) (*usecase.MessageOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	if user.EmailVerified {
		return &usecase.MessageOutput{Message: usecase.MsgEmailAlreadyVerified}, nil
	}

	if err := srv.issueAndSendVerification(ctx, user); err != nil {
		return nil, err
	}

	return &usecase.MessageOutput{Message: usecase.MsgVerificationSent}, nil
}

// VerifyEmail consumes a verification token. A token that was already used for an
// account that is now verified reports success again instead of failing.
func (srv *authService) VerifyEmail(ctx context.Context, token string) (*usecase.VerifyEmailOutput, error) {
	var verified *entity.User
	var alreadyVerified bool

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if token != "" {
			done, err := srv.verifiedByUsedToken(ctx, repoFactory, token)
			if err != nil {
				return err
			}
			if done {
				alreadyVerified = true

				return nil
			}
		}

		user, row, err := srv.verifications.Lookup(ctx, repoFactory, token)
		if err != nil {
			return err
		}
		if err := srv.verifications.Consume(ctx, repoFactory, user, row); err != nil {
			return err
		}

		alreadyVerified = user.EmailVerified
		user.EmailVerified = true
		if err := repoFactory.NewUserRepository().Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to mark email verified")
		}
		verified = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Email verification failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute email verification transaction")
	}

	if alreadyVerified {
		return &usecase.VerifyEmailOutput{Message: usecase.MsgEmailAlreadyVerified, AlreadyVerified: true}, nil
	}

	srv.log(ctx).Info("Email verified", slog.Any("user_id", verified.ID))

	sendBestEffort(ctx, srv.log(ctx), "welcome", func(ctx context.Context) error {
		return srv.emailSender.SendWelcomeEmail(ctx, verified.Email, verified.Username)
	})

	return &usecase.VerifyEmailOutput{Message: usecase.MsgEmailVerified}, nil
}

// verifiedByUsedToken reports whether token is a consumed verification token
// whose owner is already verified.
func (srv *authService) verifiedByUsedToken(ctx context.Context, repoFactory repository.RepositoryFactory, token string) (bool, error) {
	row, err := repoFactory.NewEmailVerificationRepository().FindByHash(ctx, srv.tokenService.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrOneTimeTokenNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "failed to find verification token")
	}
	if !row.Used {
		return false, nil
	}

	owner, err := repoFactory.NewUserRepository().FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "failed to find token owner")
	}

	return owner.EmailVerified, nil
}

// ResendVerificationEmail mails a new verification link when the address belongs to
// an unverified account. The response never reveals whether it did.
func (srv *authService) ResendVerificationEmail(ctx context.Context, input *usecase.ResendVerificationInput) (*usecase.MessageOutput, error) {
	generic := &usecase.MessageOutput{Message: usecase.MsgVerificationRequested}

	user, err := srv.userRepo.FindByEmail(ctx, validation.NormalizeEmail(input.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Error("Failed to look up user for verification resend", slog.Any("error", err))
		}

		return generic, nil
	}
	if user.EmailVerified || !user.IsActive() {
		return generic, nil
	}

	srv.background.Go(ctx, "verification_resend", func(ctx context.Context) error {
		return srv.issueAndSendVerification(ctx, user)
	})

	return generic, nil
}

// startVerification runs after registration. Any failure only gets logged.
func (srv *authService) startVerification(ctx context.Context, user *entity.User) {
	if err := srv.issueAndSendVerification(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to start email verification", slog.Any("user_id", user.ID), slog.Any("error", err))
	}
}

func (srv *authService) issueAndSendVerification(ctx context.Context, user *entity.User) error {
	var rawToken string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		rawToken, err = srv.verifications.Issue(ctx, repoFactory, user)

		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to issue verification token")
	}

	sendBestEffort(ctx, srv.log(ctx), "verification", func(ctx context.Context) error {
		return srv.emailSender.SendVerificationEmail(ctx, user.Email, user.Username, srv.links.verifyEmail(rawToken))
	})

	return nil
}

// GetCurrentUser resolves an access token to an active user.
func (srv *authService) GetCurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := srv.tokenService.ValidateToken(accessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}
	if claims.Type != service.TokenTypeAccess {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, "not an access token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthorized, "user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}
	if !user.IsActive() {
		return nil, domainerrors.ErrAccountInactive
	}

	return user, nil
}
