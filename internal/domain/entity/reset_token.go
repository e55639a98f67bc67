package entity

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use, time-boxed credential for resetting a
// password. Only the hash of the opaque token is stored. At most one
// unconsumed, unexpired token is actionable per user: issuing a new one marks
// all prior unconsumed tokens used.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string     // SHA-256 hash of the raw token sent to the user.
	ExpiresAt time.Time
	UsedAt    *time.Time // Nil while unconsumed. Once set, the token is permanently dead.
	CreatedAt time.Time
}

// IsExpired reports whether the token's validity window has passed.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsUsed reports whether the token has already been consumed.
func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}
