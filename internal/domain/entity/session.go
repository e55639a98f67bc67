package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one authenticated device or browser instance. The raw
// refresh token is never stored; only its SHA-256 hash is. On rotation the
// row is mutated in place: the current hash moves to PrevTokenHash so that a
// replay of the just-rotated token remains resolvable and can be recognised
// as reuse.
type Session struct {
	ID            uuid.UUID  // Opaque handle returned to the client as "current session".
	UserID        uuid.UUID  // Owner of the session.
	TokenHash     string     // SHA-256 hash of the current refresh token.
	PrevTokenHash string     // Hash of the token rotated away last; empty before first rotation.
	IPAddress     string     // Captured at creation. Metadata only, never used for binding.
	UserAgent     string     // Captured at creation. Metadata only.
	ExpiresAt     time.Time  // Hard expiry; checked lazily at read time.
	RevokedAt     *time.Time // Nil while the session is live. Revocation is terminal.
	CreatedAt     time.Time
	LastUsedAt    time.Time // Bumped on every successful refresh.
}

// IsExpired reports whether the session's hard expiry has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsRevoked reports whether the session has been terminally revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsActive reports whether the session can still be refreshed.
func (s *Session) IsActive(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpired(now)
}

// SessionInfo is the listing view of a session handed to "manage my devices"
// callers. Current is a client UX flag only, not a security boundary.
type SessionInfo struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastUsedAt time.Time
	ExpiresAt  time.Time
	Current    bool
}

// TokenPair is the credential bundle returned by login and refresh. It is
// never persisted; the refresh token exists in the store only as a hash.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	SessionID    uuid.UUID
	ExpiresAt    time.Time // Client-visible expiry hint for the access token.
}
