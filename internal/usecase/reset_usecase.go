package usecase

import (
	"context"

	"github.com/google/uuid"
)

// RequestResetInput identifies the account asking for a password reset.
type RequestResetInput struct {
	Email    string `validate:"required,email"`
	TenantID *uuid.UUID
}

// PerformResetInput carries a raw reset token and the replacement password.
type PerformResetInput struct {
	Token       string `validate:"required"`
	NewPassword string `validate:"required,min=8,max=128"`
}

// PasswordResetUsecase issues and consumes single-use reset tokens.
type PasswordResetUsecase interface {
	// RequestReset issues a fresh reset token and hands it to the notifier.
	// It always succeeds from the caller's point of view, even when the
	// account does not exist or cannot log in; this anti-enumeration shape
	// is a contract, not an oversight.
	RequestReset(ctx context.Context, input *RequestResetInput) error

	// PerformReset consumes a token exactly once, replaces the password and
	// revokes every session of the user.
	PerformReset(ctx context.Context, input *PerformResetInput) error
}
