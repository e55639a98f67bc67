package repository

import (
	"context"
	"errors"
	"time"

	"campus/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when no session matches the lookup key.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRotated is returned by UpdateRotation when the conditional
	// update matched no row: the stored hash changed or the row was revoked
	// between read and write. The caller must re-read and treat the token as
	// potentially reused.
	ErrSessionRotated = errors.New("session concurrently rotated or revoked")
)

// SessionRepository is the Session Store. Sessions are append/mutate only
// from the subsystem's point of view: revocation writes a timestamp, it never
// deletes. DeleteExpired exists solely for the external housekeeping job.
type SessionRepository interface {
	// Create persists a new session carrying the refresh-token hash and the
	// request metadata captured at login.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its opaque handle, revoked or not.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindByRefreshHash retrieves the session whose current or previous
	// refresh-token hash equals hash. Matching the previous hash is how a
	// replay of a just-rotated token stays resolvable for reuse detection.
	FindByRefreshHash(ctx context.Context, hash string) (*entity.Session, error)

	// FindActiveByUser returns the user's unrevoked, unexpired sessions
	// ordered by most recently used.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// UpdateRotation atomically replaces the stored hash, keeping the old one
	// as the previous hash, and slides the expiry window. The update is
	// conditional on the current hash still being oldHash and the row being
	// unrevoked; otherwise ErrSessionRotated is returned and nothing changes.
	UpdateRotation(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt, usedAt time.Time) error

	// Revoke terminally revokes a single session. Revoking an already revoked
	// session is a no-op, not an error.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error

	// RevokeAllForUser revokes every active session of the user except the
	// one identified by exceptID (nil revokes all). Returns the number of
	// sessions revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, exceptID *uuid.UUID, at time.Time) (int64, error)

	// CountActive returns the number of active, unexpired sessions.
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)

	// EvictOldest revokes the user's oldest active sessions (by creation
	// time) until at most keepCount remain. Returns the number evicted.
	EvictOldest(ctx context.Context, userID uuid.UUID, keepCount int, at time.Time) (int64, error)

	// DeleteExpired hard-deletes sessions whose expiry passed before the
	// cutoff. Housekeeping only; the lifecycle manager never calls it.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
