package repository

import (
	"context"
	"errors"
	"time"

	"campus/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrResetTokenNotFound is returned when no unconsumed reset token matches.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository is the Reset Token Store. Raw tokens never reach the
// store; every lookup is by hash.
type ResetTokenRepository interface {
	// Create persists a new hashed reset token.
	Create(ctx context.Context, token *entity.PasswordResetToken) error

	// FindValid retrieves the unconsumed token matching the hash. Expiry is
	// not filtered here; the caller checks it so that expired and never
	// issued remain indistinguishable in the returned error.
	FindValid(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)

	// MarkUsed consumes the token permanently.
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error

	// InvalidateAllForUser marks every unconsumed token of the user used.
	// Called when a new token is issued and when the password changes.
	InvalidateAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)

	// DeleteExpired hard-deletes tokens that expired before the cutoff.
	// Housekeeping only.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
