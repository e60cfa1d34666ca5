package postgres

import (
	"context"

	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/domain/repository"
	"sentinel/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type loginHistoryRepository struct {
	db *gorm.DB
}

// NewLoginHistoryRepository is the constructor for loginHistoryRepository.
func NewLoginHistoryRepository(db *gorm.DB) repository.LoginHistoryRepository {
	return &loginHistoryRepository{db: db}
}

// Append inserts one audit row. Rows are never updated.
func (repo *loginHistoryRepository) Append(ctx context.Context, record *entity.LoginHistory) error {
	recordM := &model.LoginHistoryModel{
		ID:            record.ID,
		UserID:        record.UserID,
		IPAddress:     record.IPAddress,
		UserAgent:     record.UserAgent,
		Success:       record.Success,
		FailureReason: record.FailureReason,
		CreatedAt:     record.CreatedAt,
	}
	if recordM.ID == uuid.Nil {
		recordM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append login history")
	}

	record.ID = recordM.ID
	record.CreatedAt = recordM.CreatedAt

	return nil
}
