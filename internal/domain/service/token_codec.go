package service

import (
	"time"

	"campus/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the claims carried by a signed access token. The token is
// stateless: verification never touches the store, so revoking a session does
// not invalidate access tokens already in flight. Short TTLs bound the gap.
type AccessClaims struct {
	UserID       uuid.UUID `json:"-"`
	TenantID     uuid.UUID `json:"tid"`
	Email        string    `json:"email"`
	UserType     string    `json:"utype"`
	TokenVersion int64     `json:"tver"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access tokens and generates the opaque
// refresh and reset tokens whose hashes the stores hold.
type TokenCodec interface {
	// IssueAccessToken signs a short-lived access token for the user and
	// returns the token with its expiry hint.
	IssueAccessToken(user *entity.User) (token string, expiresAt time.Time, err error)

	// VerifyAccessToken parses and validates a token string. Failures are
	// domainerrors.ErrTokenExpired or domainerrors.ErrTokenInvalid; both are
	// terminal for the caller.
	VerifyAccessToken(token string) (*AccessClaims, error)

	// GenerateRefreshToken returns a fresh opaque refresh token with at
	// least 256 bits of randomness, URL-safe encoded.
	GenerateRefreshToken() (string, error)

	// GenerateResetToken returns a fresh opaque password-reset token.
	GenerateResetToken() (string, error)

	// HashToken computes the deterministic one-way hash under which opaque
	// tokens are stored and looked up.
	HashToken(raw string) string

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration

	// ResetTokenTTL returns the configured reset-token lifetime.
	ResetTokenTTL() time.Duration
}
