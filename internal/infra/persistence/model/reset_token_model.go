package model

import (
	"time"

	"github.com/google/uuid"

	"campus/internal/domain/entity"
)

// PasswordResetTokenModel mirrors the 'password_reset_tokens' table.
type PasswordResetTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}

// ToResetTokenDomain converts the persistence model to a domain entity.
func ToResetTokenDomain(m *PasswordResetTokenModel) *entity.PasswordResetToken {
	return &entity.PasswordResetToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		UsedAt:    m.UsedAt,
		CreatedAt: m.CreatedAt,
	}
}

// FromResetTokenDomain converts a domain entity to the persistence model.
func FromResetTokenDomain(t *entity.PasswordResetToken) *PasswordResetTokenModel {
	return &PasswordResetTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}
