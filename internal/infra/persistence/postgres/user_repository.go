package postgres

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"
	"sentinel/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	usersEmailIndex    = "idx_users_email"
	usersUsernameIndex = "idx_users_username"
)

// userRepository implements the domain.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

// FindByUsername retrieves a single user by username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.findOne(ctx, "username = ?", username)
}

// FindByResetTokenHash retrieves the user holding the given password reset token digest.
func (repo *userRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.User, error) {
	return repo.findOne(ctx, "reset_token_hash = ?", tokenHash)
}

// FindByVerificationTokenHash retrieves the user holding the given verification token digest.
func (repo *userRepository) FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*entity.User, error) {
	return repo.findOne(ctx, "verification_token_hash = ?", tokenHash)
}

func (repo *userRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where(query, args...).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the storage.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	if userM.ID == uuid.Nil {
		userM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		switch {
		case violatesConstraint(err, usersEmailIndex):
			return repository.ErrUserEmailExists
		case violatesConstraint(err, usersUsernameIndex):
			return repository.ErrUsernameExists
		case isCheckConstraintViolation(err), isNotNullConstraintViolation(err):
			return domainerrors.ErrValidationFailed.WrapMessage("user violates a table constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the entity with generated values
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the storage.
// The lockout counter columns are owned by RegisterFailedLogin and ResetLoginFailures and are never written here.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	userM.UpdatedAt = time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("email", "username", "password_hash", "oauth_provider", "role", "status", "email_verified",
			"reset_token_hash", "reset_token_expires", "verification_token_hash", "verification_token_expires", "updated_at").
		Updates(userM)
	if result.Error != nil {
		switch {
		case violatesConstraint(result.Error, usersEmailIndex):
			return repository.ErrUserEmailExists
		case violatesConstraint(result.Error, usersUsernameIndex):
			return repository.ErrUsernameExists
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// RegisterFailedLogin increments the failure counter and applies the lock in a single statement.
// Right-hand expressions see the pre-update row, so the CASE compares the same count that is written.
func (repo *userRepository) RegisterFailedLogin(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*repository.LoginFailureState, error) {
	var rows []struct {
		FailedLoginAttempts int
		LockedUntil         *time.Time
	}

	err := repo.db.WithContext(ctx).Raw(`
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE WHEN failed_login_attempts + 1 >= ? THEN ?::timestamptz ELSE locked_until END,
		    updated_at = NOW()
		WHERE id = ?
		RETURNING failed_login_attempts, locked_until`,
		threshold, lockUntil, id,
	).Scan(&rows).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to record failed login")
	}
	if len(rows) == 0 {
		return nil, repository.ErrUserNotFound
	}

	return &repository.LoginFailureState{
		FailedAttempts: rows[0].FailedLoginAttempts,
		LockedUntil:    rows[0].LockedUntil,
	}, nil
}

// ResetLoginFailures zeroes the failed attempt counter and clears locked_until.
func (repo *userRepository) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to reset login failures")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func toUserDomain(data *model.UserModel) *entity.User {
	return &entity.User{
		ID:                       data.ID,
		Email:                    data.Email,
		Username:                 data.Username,
		PasswordHash:             data.PasswordHash,
		OAuthProvider:            data.OAuthProvider,
		Role:                     entity.ParseRole(data.Role),
		Status:                   entity.UserStatus(data.Status),
		EmailVerified:            data.EmailVerified,
		FailedLoginAttempts:      data.FailedLoginAttempts,
		LockedUntil:              data.LockedUntil,
		ResetTokenHash:           data.ResetTokenHash,
		ResetTokenExpires:        data.ResetTokenExpires,
		VerificationTokenHash:    data.VerificationTokenHash,
		VerificationTokenExpires: data.VerificationTokenExpires,
		CreatedAt:                data.CreatedAt,
		UpdatedAt:                data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:                       data.ID,
		Email:                    data.Email,
		Username:                 data.Username,
		PasswordHash:             data.PasswordHash,
		OAuthProvider:            data.OAuthProvider,
		Role:                     data.Role.String(),
		Status:                   string(data.Status),
		EmailVerified:            data.EmailVerified,
		FailedLoginAttempts:      data.FailedLoginAttempts,
		LockedUntil:              data.LockedUntil,
		ResetTokenHash:           data.ResetTokenHash,
		ResetTokenExpires:        data.ResetTokenExpires,
		VerificationTokenHash:    data.VerificationTokenHash,
		VerificationTokenExpires: data.VerificationTokenExpires,
		CreatedAt:                data.CreatedAt,
		UpdatedAt:                data.UpdatedAt,
	}
}
