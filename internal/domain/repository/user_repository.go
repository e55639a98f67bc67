// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"campus/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the User Store consumed by the auth subsystem. User rows
// are owned by the identity module; this subsystem reads credentials and
// status and writes back only the login and password watermarks.
type UserRepository interface {
	// FindByEmail retrieves a user by lowercased email. A nil tenantID
	// searches across tenants; otherwise the lookup is tenant-scoped.
	FindByEmail(ctx context.Context, email string, tenantID *uuid.UUID) (*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// UpdateLastLogin records a successful login at the given time.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// UpdatePasswordHash persists a new credential hash and moves the
	// password-changed watermark, invalidating the token version of every
	// previously issued access token.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error

	// AcquireSessionMutex takes a row-level lock on the user for the duration
	// of the surrounding transaction. Serializes the session-cap check
	// against concurrent logins for the same user.
	AcquireSessionMutex(ctx context.Context, id uuid.UUID) error
}
