package impl

import (
	"context"
	"log/slog"

	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager: txManager,
		logger:    logger,
	}
}

// ListActiveSessions returns the user's live sessions, most recently used
// first.
func (srv *sessionService) ListActiveSessions(ctx context.Context, userID uuid.UUID, currentSessionID *uuid.UUID) ([]*entity.SessionInfo, error) {
	var infos []*entity.SessionInfo

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		sessions, err := repoFactory.SessionRepo().FindActiveByUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find active sessions")
		}

		infos = make([]*entity.SessionInfo, 0, len(sessions))
		for _, session := range sessions {
			infos = append(infos, &entity.SessionInfo{
				ID:         session.ID,
				UserID:     session.UserID,
				IPAddress:  session.IPAddress,
				UserAgent:  session.UserAgent,
				CreatedAt:  session.CreatedAt,
				LastUsedAt: session.LastUsedAt,
				ExpiresAt:  session.ExpiresAt,
				Current:    currentSessionID != nil && session.ID == *currentSessionID,
			})
		}

		return nil
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Failed to list active sessions", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, err
	}

	return infos, nil
}

// RevokeSession revokes one of the caller's sessions, typically another
// device from the session list.
func (srv *sessionService) RevokeSession(ctx context.Context, sessionID, callerUserID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return revokeOwnedSession(ctx, repoFactory.SessionRepo(), sessionID, callerUserID)
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Failed to revoke session",
			slog.Any("session_id", sessionID),
			slog.Any("user_id", callerUserID),
			slog.Any("error", err),
		)

		return err
	}

	srv.logger.InfoContext(ctx, "Session revoked", slog.Any("session_id", sessionID))

	return nil
}
