// Package notification contains ResetNotifier implementations. The real
// mail-based delivery lives in the messaging platform; this package carries
// the development stand-in.
package notification

import (
	"context"
	"log/slog"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/service"
)

// logNotifier acknowledges reset-token delivery through the structured log.
// The raw token itself is never written; only the fact that one was issued.
type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier is the constructor for logNotifier.
func NewLogNotifier(logger *slog.Logger) service.ResetNotifier {
	return &logNotifier{logger: logger}
}

// DeliverResetToken records that a reset token was handed off for delivery.
func (n *logNotifier) DeliverResetToken(ctx context.Context, user *entity.User, _ string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "Password reset token issued",
		slog.Any("user_id", user.ID),
		slog.Time("expires_at", expiresAt),
	)

	return nil
}
