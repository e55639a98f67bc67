// Package usecase defines the application-facing interfaces of the auth
// subsystem together with their input and output types. The HTTP layer talks
// to these interfaces only; no operation here performs transport work.
package usecase

import (
	"context"

	"campus/internal/domain/entity"
	"campus/internal/domain/service"

	"github.com/google/uuid"
)

// LoginInput carries everything the lifecycle manager needs to authenticate
// a password login. TenantID is optional: a nil value means the transport
// layer could not resolve a tenant and the email is looked up globally.
// IPAddress and UserAgent are captured as session metadata only.
type LoginInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
	TenantID  *uuid.UUID
	IPAddress string
	UserAgent string
}

// LoginOutput bundles the sanitized user with the issued token pair.
type LoginOutput struct {
	User      *entity.User
	TokenPair *entity.TokenPair
}

// RefreshInput carries a raw refresh token presented for rotation.
type RefreshInput struct {
	RefreshToken string `validate:"required"`
	IPAddress    string
	UserAgent    string
}

// ChangePasswordInput carries a password change for an authenticated user.
// CurrentSessionID, when set, is the one session spared from the cascade so
// the actor stays logged in on the device they just used.
type ChangePasswordInput struct {
	UserID           uuid.UUID `validate:"required"`
	CurrentPassword  string    `validate:"required"`
	NewPassword      string    `validate:"required,min=8,max=128"`
	CurrentSessionID *uuid.UUID
}

// AuthUsecase is the session lifecycle manager: the only component of the
// subsystem with business rules. Every method returns a typed domain error
// on failure; see internal/domain/errors for the taxonomy.
type AuthUsecase interface {
	// Login verifies credentials and account status, enforces the concurrent
	// session cap, creates a session and issues a token pair.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh rotates a refresh token, detecting reuse of rotated-away
	// tokens and cascading revocation across the user's sessions when it
	// finds any.
	Refresh(ctx context.Context, input *RefreshInput) (*entity.TokenPair, error)

	// Logout revokes the caller's own session.
	Logout(ctx context.Context, sessionID, callerUserID uuid.UUID) error

	// ChangePassword verifies the current password, persists the new hash,
	// revokes every other session and kills outstanding reset tokens.
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error

	// VerifyAccessToken validates a stateless access token and returns its
	// claims. No store read is performed.
	VerifyAccessToken(token string) (*service.AccessClaims, error)
}
