package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. Emails are stored lowercased so the unique index is case-insensitive in practice.
type UserModel struct {
	ID                       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email                    string     `gorm:"type:varchar(254);uniqueIndex:idx_users_email;not null"`
	Username                 string     `gorm:"type:varchar(20);uniqueIndex:idx_users_username;not null"`
	PasswordHash             *string    `gorm:"type:varchar(255)"`
	OAuthProvider            *string    `gorm:"column:oauth_provider;type:varchar(50)"`
	Role                     string     `gorm:"type:varchar(20);not null;default:user"`
	Status                   string     `gorm:"type:varchar(20);not null;default:active"`
	EmailVerified            bool       `gorm:"not null;default:false"`
	FailedLoginAttempts      int        `gorm:"not null;default:0"`
	LockedUntil              *time.Time `gorm:"type:timestamptz"`
	ResetTokenHash           *string    `gorm:"type:varchar(64);index"`
	ResetTokenExpires        *time.Time `gorm:"type:timestamptz"`
	VerificationTokenHash    *string    `gorm:"type:varchar(64);index"`
	VerificationTokenExpires *time.Time `gorm:"type:timestamptz"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// LoginHistoryModel mirrors the append-only 'login_history' table.
type LoginHistoryModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	IPAddress     string    `gorm:"type:varchar(64)"`
	UserAgent     string    `gorm:"type:text"`
	Success       bool      `gorm:"not null"`
	FailureReason string    `gorm:"type:varchar(64)"`
	CreatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (LoginHistoryModel) TableName() string {
	return "login_history"
}
