// Package model contains the GORM table mappings of the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"campus/internal/domain/entity"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// The table is owned by the identity module; the auth subsystem reads the
// credential columns and writes back only last_login_at and the password pair.
type UserModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_users_tenant_email"`
	Email             string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email"`
	UserType          string    `gorm:"type:varchar(20);not null"`
	PasswordHash      *string   `gorm:"type:varchar(255)"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PasswordChangedAt *time.Time
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Sessions    []SessionModel            `gorm:"foreignKey:UserID"`
	ResetTokens []PasswordResetTokenModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToUserDomain converts the persistence model to a domain entity.
func ToUserDomain(m *UserModel) *entity.User {
	return &entity.User{
		ID:                m.ID,
		TenantID:          m.TenantID,
		Email:             m.Email,
		Type:              entity.UserType(m.UserType),
		PasswordHash:      m.PasswordHash,
		Status:            entity.UserStatus(m.Status),
		PasswordChangedAt: m.PasswordChangedAt,
		LastLoginAt:       m.LastLoginAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
