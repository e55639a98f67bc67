package service

import (
	"context"
	"time"

	"campus/internal/domain/entity"
)

// ResetNotifier delivers a raw password-reset token to the account holder.
// Delivery (email, SMS) is an external concern; the reset manager only hands
// the token over. The raw token must never be persisted or logged by
// implementations.
type ResetNotifier interface {
	DeliverResetToken(ctx context.Context, user *entity.User, rawToken string, expiresAt time.Time) error
}
