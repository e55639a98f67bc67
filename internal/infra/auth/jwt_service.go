// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"
)

// Opaque tokens carry 32 bytes of randomness, URL-safe base64 encoded.
const opaqueTokenBytes = 32

// jwtService is a concrete implementation of the TokenCodec interface. Access
// tokens are HS256 JWTs; refresh and reset tokens are opaque random strings
// of which only a SHA-256 digest is ever stored.
type jwtService struct {
	accessSecret string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	resetTTL     time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenCodec, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt access secret must be provided")
	}

	return &jwtService{
		accessSecret: cfg.SecretKey.Access,
		accessTTL:    cfg.Auth.AccessTokenTTL,
		refreshTTL:   cfg.Auth.RefreshTokenTTL,
		resetTTL:     cfg.Auth.ResetTokenTTL,
	}, nil
}

// IssueAccessToken signs a short-lived access token carrying the user's
// identity claims and the token-version watermark.
func (s *jwtService) IssueAccessToken(user *entity.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := &service.AccessClaims{
		TenantID:     user.TenantID,
		Email:        user.Email,
		UserType:     string(user.Type),
		TokenVersion: user.TokenVersion(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}

	return signed, expiresAt, nil
}

// VerifyAccessToken parses and validates a token string. An expired token
// maps to ErrTokenExpired; every other failure, including a bad signature or
// an unexpected signing method, maps to ErrTokenInvalid.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.accessSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired
		}

		return nil, domainerrors.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domainerrors.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid
	}
	claims.UserID = userID

	return claims, nil
}

// GenerateRefreshToken returns a fresh opaque refresh token.
func (s *jwtService) GenerateRefreshToken() (string, error) {
	return generateOpaqueToken()
}

// GenerateResetToken returns a fresh opaque password-reset token.
func (s *jwtService) GenerateResetToken() (string, error) {
	return generateOpaqueToken()
}

// HashToken computes the hex-encoded SHA-256 digest under which opaque
// tokens are stored and looked up.
func (s *jwtService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// ResetTokenTTL returns the configured reset-token lifetime.
func (s *jwtService) ResetTokenTTL() time.Duration {
	return s.resetTTL
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate token entropy")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
