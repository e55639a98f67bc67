package model

import (
	"time"

	"github.com/google/uuid"

	"campus/internal/domain/entity"
)

// SessionModel mirrors the 'sessions' table. token_hash and prev_token_hash
// are both indexed because refresh lookups match either column.
type SessionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash     string    `gorm:"type:char(64);not null;uniqueIndex"`
	PrevTokenHash string    `gorm:"type:char(64);index"`
	IPAddress     string    `gorm:"type:varchar(45)"`
	UserAgent     string    `gorm:"type:varchar(512)"`
	ExpiresAt     time.Time `gorm:"not null;index"`
	RevokedAt     *time.Time
	CreatedAt     time.Time
	LastUsedAt    time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToSessionDomain converts the persistence model to a domain entity.
func ToSessionDomain(m *SessionModel) *entity.Session {
	return &entity.Session{
		ID:            m.ID,
		UserID:        m.UserID,
		TokenHash:     m.TokenHash,
		PrevTokenHash: m.PrevTokenHash,
		IPAddress:     m.IPAddress,
		UserAgent:     m.UserAgent,
		ExpiresAt:     m.ExpiresAt,
		RevokedAt:     m.RevokedAt,
		CreatedAt:     m.CreatedAt,
		LastUsedAt:    m.LastUsedAt,
	}
}

// FromSessionDomain converts a domain entity to the persistence model.
func FromSessionDomain(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:            s.ID,
		UserID:        s.UserID,
		TokenHash:     s.TokenHash,
		PrevTokenHash: s.PrevTokenHash,
		IPAddress:     s.IPAddress,
		UserAgent:     s.UserAgent,
		ExpiresAt:     s.ExpiresAt,
		RevokedAt:     s.RevokedAt,
		CreatedAt:     s.CreatedAt,
		LastUsedAt:    s.LastUsedAt,
	}
}
