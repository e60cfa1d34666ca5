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

// oneTimeTokenRepository implements repository.OneTimeTokenRepository over one ledger table.
type oneTimeTokenRepository struct {
	db      *gorm.DB
	table   string
	purpose entity.TokenPurpose
}

// NewPasswordResetRepository returns the ledger backed by the password_resets table.
func NewPasswordResetRepository(db *gorm.DB) repository.OneTimeTokenRepository {
	return &oneTimeTokenRepository{db: db, table: model.PasswordResetTable, purpose: entity.TokenPurposePasswordReset}
}

// NewEmailVerificationRepository returns the ledger backed by the email_verifications table.
func NewEmailVerificationRepository(db *gorm.DB) repository.OneTimeTokenRepository {
	return &oneTimeTokenRepository{db: db, table: model.EmailVerificationTable, purpose: entity.TokenPurposeEmailVerification}
}

// Create persists a new, unused ledger row.
func (repo *oneTimeTokenRepository) Create(ctx context.Context, token *entity.OneTimeToken) error {
	tokenM := &model.OneTimeTokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		Used:      token.Used,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	if tokenM.ID == uuid.Nil {
		tokenM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Table(repo.table).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrTokenGenerationFailed.WrapMessage("token digest already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create "+repo.table+" row")
	}

	token.ID = tokenM.ID
	token.Purpose = repo.purpose
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByHash retrieves a ledger row by token digest.
func (repo *oneTimeTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.OneTimeToken, error) {
	var tokenM model.OneTimeTokenModel
	err := repo.db.WithContext(ctx).
		Table(repo.table).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOneTimeTokenNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find "+repo.table+" row")
	}

	return &entity.OneTimeToken{
		ID:        tokenM.ID,
		UserID:    tokenM.UserID,
		Purpose:   repo.purpose,
		TokenHash: tokenM.TokenHash,
		Used:      tokenM.Used,
		ExpiresAt: tokenM.ExpiresAt,
		CreatedAt: tokenM.CreatedAt,
	}, nil
}

// MarkUsed is a compare-and-swap on the used flag: only the caller that flips it sees one affected row.
func (repo *oneTimeTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Table(repo.table).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume "+repo.table+" row")
	}
	if result.RowsAffected != 1 {
		return repository.ErrOneTimeTokenUsed
	}

	return nil
}

// DeleteStale removes rows consumed or expired before the cutoff.
func (repo *oneTimeTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Table(repo.table).
		Where("(used = ? AND created_at < ?) OR expires_at < ?", true, before, before).
		Delete(&model.OneTimeTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge "+repo.table)
	}

	return result.RowsAffected, nil
}
