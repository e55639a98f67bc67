// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface. It is the only component
// with session lifecycle rules; stores and token services stay mechanical.
type authService struct {
	txManager         repository.TransactionManager
	hasher            service.PasswordHasher
	codec             service.TokenCodec
	logger            *slog.Logger
	validate          *validator.Validate
	maxActiveSessions int
}

// NewAuthService is the constructor for authService. maxActiveSessions caps
// concurrent sessions per user; zero or negative disables the cap.
func NewAuthService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	codec service.TokenCodec,
	logger *slog.Logger,
	maxActiveSessions int,
) usecase.AuthUsecase {
	return &authService{
		txManager:         txManager,
		hasher:            hasher,
		codec:             codec,
		logger:            logger,
		validate:          validator.New(),
		maxActiveSessions: maxActiveSessions,
	}
}

// Login verifies credentials and account status, enforces the session cap,
// creates a session and issues a token pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	now := time.Now()

	var output *usecase.LoginOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()

		// 1. Resolve the account. A miss burns a hash computation so the
		// response time does not reveal whether the email exists.
		user, err := userRepo.FindByEmail(ctx, email, input.TenantID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				srv.hasher.SimulateVerify()

				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		// 2. Verify the credential. An account without a password burns the
		// same computation and fails with the same public message.
		if user.PasswordHash == nil {
			srv.hasher.SimulateVerify()

			return domainerrors.ErrCredentialNotSet
		}
		if !srv.hasher.Verify(input.Password, *user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		// 3. Enforce account status. Checked only after the credential so a
		// wrong password never reveals account state.
		if err := checkUserStatus(user.Status); err != nil {
			return err
		}

		// 4. Serialize against concurrent logins for the same user, then make
		// room under the session cap.
		if err := userRepo.AcquireSessionMutex(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to lock user for login")
		}
		if srv.maxActiveSessions > 0 {
			count, err := sessionRepo.CountActive(ctx, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to count active sessions")
			}
			if count >= srv.maxActiveSessions {
				evicted, err := sessionRepo.EvictOldest(ctx, user.ID, srv.maxActiveSessions-1, now)
				if err != nil {
					return errors.Wrap(err, "failed to evict oldest sessions")
				}
				srv.logger.InfoContext(ctx, "Session cap reached, evicted oldest sessions",
					slog.Any("user_id", user.ID),
					slog.Int64("evicted", evicted),
				)
			}
		}

		// 5. Create the session. Only the hash of the refresh token is stored.
		rawRefresh, err := srv.codec.GenerateRefreshToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}

		session := &entity.Session{
			ID:         uuid.New(),
			UserID:     user.ID,
			TokenHash:  srv.codec.HashToken(rawRefresh),
			IPAddress:  input.IPAddress,
			UserAgent:  input.UserAgent,
			ExpiresAt:  now.Add(srv.codec.RefreshTokenTTL()),
			CreatedAt:  now,
			LastUsedAt: now,
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to create session")
		}

		if err := userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return errors.Wrap(err, "failed to update last login")
		}
		loginAt := now
		user.LastLoginAt = &loginAt

		// 6. Issue the access token.
		accessToken, expiresAt, err := srv.codec.IssueAccessToken(user)
		if err != nil {
			return errors.Wrap(err, "failed to issue access token")
		}

		output = &usecase.LoginOutput{
			User: user.Sanitized(),
			TokenPair: &entity.TokenPair{
				AccessToken:  accessToken,
				RefreshToken: rawRefresh,
				SessionID:    session.ID,
				ExpiresAt:    expiresAt,
			},
		}

		return nil
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Login failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.logger.InfoContext(ctx, "Login succeeded",
		slog.Any("user_id", output.User.ID),
		slog.Any("session_id", output.TokenPair.SessionID),
	)

	return output, nil
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated away, or one belonging to a revoked session, is treated as theft
// evidence: every session of the user is revoked before the error returns.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*entity.TokenPair, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	presentedHash := srv.codec.HashToken(input.RefreshToken)
	now := time.Now()

	var pair *entity.TokenPair

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()

		// 1. Resolve the session by current or previous hash. A token rotated
		// away more than once ago resolves to nothing and stays a plain
		// invalid-token failure.
		session, err := sessionRepo.FindByRefreshHash(ctx, presentedHash)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrInvalidRefreshToken
			}

			return errors.Wrap(err, "failed to find session")
		}

		// 2. Reuse detection. A session resolved through anything but its
		// current hash means the client presented a token we already rotated
		// away; a revoked session means someone kept using a dead handle.
		// Either way the refresh token has been seen in two places and the
		// whole user cascade goes down.
		if session.IsRevoked() || session.TokenHash != presentedHash {
			return srv.revokeCascade(ctx, sessionRepo, session, now)
		}

		if session.IsExpired(now) {
			return domainerrors.ErrSessionExpired
		}

		// 3. Re-check account status so suspension takes effect at the next
		// refresh, not at session expiry.
		user, err := userRepo.FindByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidRefreshToken
			}

			return errors.Wrap(err, "failed to find user")
		}
		if err := checkUserStatus(user.Status); err != nil {
			return err
		}

		// 4. Rotate. The conditional update loses against a concurrent
		// refresh of the same token; the loser re-reads and goes down the
		// reuse path.
		rawRefresh, err := srv.codec.GenerateRefreshToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}
		newHash := srv.codec.HashToken(rawRefresh)

		err = sessionRepo.UpdateRotation(ctx, session.ID, presentedHash, newHash, now.Add(srv.codec.RefreshTokenTTL()), now)
		if err != nil {
			if errors.Is(err, repository.ErrSessionRotated) {
				return srv.revokeCascade(ctx, sessionRepo, session, now)
			}

			return errors.Wrap(err, "failed to rotate session")
		}

		// 5. Issue the new access token.
		accessToken, expiresAt, err := srv.codec.IssueAccessToken(user)
		if err != nil {
			return errors.Wrap(err, "failed to issue access token")
		}

		pair = &entity.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: rawRefresh,
			SessionID:    session.ID,
			ExpiresAt:    expiresAt,
		}

		return nil
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Refresh failed", slog.Any("error", err))

		return nil, err
	}

	return pair, nil
}

// revokeCascade revokes every session of the session's owner and returns the
// terminal revocation error.
func (srv *authService) revokeCascade(ctx context.Context, sessionRepo repository.SessionRepository, session *entity.Session, now time.Time) error {
	revoked, err := sessionRepo.RevokeAllForUser(ctx, session.UserID, nil, now)
	if err != nil {
		return errors.Wrap(err, "failed to revoke sessions after reuse detection")
	}

	srv.logger.WarnContext(ctx, "Refresh token reuse detected, revoked all sessions",
		slog.Any("user_id", session.UserID),
		slog.Any("session_id", session.ID),
		slog.Int64("revoked", revoked),
	)

	return domainerrors.ErrSessionRevoked
}

// Logout revokes the caller's own session. Logging out an already revoked
// session succeeds; the client's goal is already met.
func (srv *authService) Logout(ctx context.Context, sessionID, callerUserID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return revokeOwnedSession(ctx, repoFactory.SessionRepo(), sessionID, callerUserID)
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Logout failed", slog.Any("session_id", sessionID), slog.Any("error", err))

		return err
	}

	srv.logger.InfoContext(ctx, "Logout succeeded", slog.Any("session_id", sessionID))

	return nil
}

// ChangePassword verifies the current password, persists the new hash with a
// fresh watermark and cascades revocation to every other session.
func (srv *authService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if err := srv.validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	now := time.Now()

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()
		resetRepo := repoFactory.ResetTokenRepo()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		// The caller is already authenticated, so a missing credential or a
		// wrong current password gets a precise error here, unlike login.
		if user.PasswordHash == nil {
			return domainerrors.ErrCredentialNotSet
		}
		if !srv.hasher.Verify(input.CurrentPassword, *user.PasswordHash) {
			return domainerrors.ErrPasswordMismatch
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
		}

		// Moving the watermark bumps the token version of all future access
		// tokens; old ones age out within the access TTL.
		if err := userRepo.UpdatePasswordHash(ctx, user.ID, newHash, now); err != nil {
			return errors.Wrap(err, "failed to update password hash")
		}

		// Every other session dies; the session the actor is using survives
		// so they are not logged out by their own password change.
		revoked, err := sessionRepo.RevokeAllForUser(ctx, user.ID, input.CurrentSessionID, now)
		if err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		// Outstanding reset tokens predate the new credential and must die
		// with it.
		if _, err := resetRepo.InvalidateAllForUser(ctx, user.ID, now); err != nil {
			return errors.Wrap(err, "failed to invalidate reset tokens")
		}

		srv.logger.InfoContext(ctx, "Password changed",
			slog.Any("user_id", user.ID),
			slog.Int64("sessions_revoked", revoked),
		)

		return nil
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Password change failed", slog.Any("user_id", input.UserID), slog.Any("error", err))

		return err
	}

	return nil
}

// VerifyAccessToken validates a stateless access token and returns its claims.
func (srv *authService) VerifyAccessToken(token string) (*service.AccessClaims, error) {
	return srv.codec.VerifyAccessToken(token)
}

// checkUserStatus maps a non-active account state to its terminal error.
func checkUserStatus(status entity.UserStatus) error {
	switch status {
	case entity.StatusActive:
		return nil
	case entity.StatusPending:
		return domainerrors.ErrAccountPending
	case entity.StatusSuspended:
		return domainerrors.ErrAccountSuspended
	default:
		return domainerrors.ErrAccountInactive
	}
}

// revokeOwnedSession revokes a session after checking the caller owns it.
// Shared by logout and device management.
func revokeOwnedSession(ctx context.Context, sessionRepo repository.SessionRepository, sessionID, callerUserID uuid.UUID) error {
	session, err := sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionNotFound
		}

		return errors.Wrap(err, "failed to find session")
	}

	if session.UserID != callerUserID {
		return domainerrors.ErrForbidden
	}

	if session.IsRevoked() {
		return nil
	}

	return sessionRepo.Revoke(ctx, sessionID, time.Now())
}
