package usecase

import (
	"context"

	"campus/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase exposes the "manage my devices" operations.
type SessionUsecase interface {
	// ListActiveSessions returns the user's unrevoked, unexpired sessions
	// ordered by most recently used. currentSessionID, when set, marks the
	// matching entry as current; the flag is client UX only.
	ListActiveSessions(ctx context.Context, userID uuid.UUID, currentSessionID *uuid.UUID) ([]*entity.SessionInfo, error)

	// RevokeSession revokes one of the caller's sessions. Same ownership
	// contract as logout, exposed separately for revoking other devices.
	RevokeSession(ctx context.Context, sessionID, callerUserID uuid.UUID) error
}
