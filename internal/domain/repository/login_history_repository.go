package repository

import (
	"context"

	"sentinel/internal/domain/entity"
)

// LoginHistoryRepository appends login audit records. Auth logic never reads them back.
type LoginHistoryRepository interface {
	Append(ctx context.Context, record *entity.LoginHistory) error
}
