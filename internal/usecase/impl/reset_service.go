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

// resetService implements the PasswordResetUsecase interface.
type resetService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	codec     service.TokenCodec
	notifier  service.ResetNotifier
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewResetService is the constructor for resetService.
func NewResetService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	codec service.TokenCodec,
	notifier service.ResetNotifier,
	logger *slog.Logger,
) usecase.PasswordResetUsecase {
	return &resetService{
		txManager: txManager,
		hasher:    hasher,
		codec:     codec,
		notifier:  notifier,
		logger:    logger,
		validate:  validator.New(),
	}
}

// RequestReset issues a fresh reset token and hands it to the notifier. The
// operation reports success regardless of whether the account exists or may
// log in, so the endpoint cannot be used to probe for registered emails.
func (srv *resetService) RequestReset(ctx context.Context, input *usecase.RequestResetInput) error {
	if err := srv.validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	now := time.Now()

	var (
		user      *entity.User
		rawToken  string
		expiresAt time.Time
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByEmail(ctx, email, input.TenantID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				// Quietly do nothing; the caller sees the same success.
				return nil
			}

			return errors.Wrap(err, "failed to find user")
		}

		// Accounts that cannot log in get no token either, again silently.
		if found.Status != entity.StatusActive {
			return nil
		}

		resetRepo := repoFactory.ResetTokenRepo()

		// Issuing a new token retires all outstanding ones; at most one reset
		// token per user is actionable at any moment.
		if _, err := resetRepo.InvalidateAllForUser(ctx, found.ID, now); err != nil {
			return errors.Wrap(err, "failed to invalidate previous reset tokens")
		}

		raw, err := srv.codec.GenerateResetToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate reset token")
		}

		token := &entity.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    found.ID,
			TokenHash: srv.codec.HashToken(raw),
			ExpiresAt: now.Add(srv.codec.ResetTokenTTL()),
			CreatedAt: now,
		}
		if err := resetRepo.Create(ctx, token); err != nil {
			return errors.Wrap(err, "failed to create reset token")
		}

		user = found
		rawToken = raw
		expiresAt = token.ExpiresAt

		return nil
	})
	if err != nil {
		srv.logger.ErrorContext(ctx, "Reset request failed", slog.Any("error", err))

		return err
	}

	if user == nil {
		return nil
	}

	// Delivery happens after the transaction committed. A delivery failure is
	// logged but not surfaced: the response shape must not depend on anything
	// account-specific.
	if err := srv.notifier.DeliverResetToken(ctx, user.Sanitized(), rawToken, expiresAt); err != nil {
		srv.logger.ErrorContext(ctx, "Reset token delivery failed",
			slog.Any("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return nil
}

// PerformReset consumes a token exactly once, replaces the password and
// revokes every session of the user. Expired, consumed and never-issued
// tokens all fail with the same error.
func (srv *resetService) PerformReset(ctx context.Context, input *usecase.PerformResetInput) error {
	if err := srv.validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	tokenHash := srv.codec.HashToken(input.Token)
	now := time.Now()

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()
		resetRepo := repoFactory.ResetTokenRepo()

		token, err := resetRepo.FindValid(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrResetTokenNotFound) {
				return domainerrors.ErrResetTokenInvalid
			}

			return errors.Wrap(err, "failed to find reset token")
		}
		if token.IsExpired(now) {
			return domainerrors.ErrResetTokenInvalid
		}

		user, err := userRepo.FindByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrResetTokenInvalid
			}

			return errors.Wrap(err, "failed to find user")
		}

		// Consume the token first so a failure later in the transaction rolls
		// everything back together.
		if err := resetRepo.MarkUsed(ctx, token.ID, now); err != nil {
			if errors.Is(err, repository.ErrResetTokenNotFound) {
				return domainerrors.ErrResetTokenInvalid
			}

			return errors.Wrap(err, "failed to consume reset token")
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
		}
		if err := userRepo.UpdatePasswordHash(ctx, user.ID, newHash, now); err != nil {
			return errors.Wrap(err, "failed to update password hash")
		}

		// The password was reset because the old credential is suspect, so no
		// session survives, current device included.
		revoked, err := sessionRepo.RevokeAllForUser(ctx, user.ID, nil, now)
		if err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		if _, err := resetRepo.InvalidateAllForUser(ctx, user.ID, now); err != nil {
			return errors.Wrap(err, "failed to invalidate reset tokens")
		}

		srv.logger.InfoContext(ctx, "Password reset completed",
			slog.Any("user_id", user.ID),
			slog.Int64("sessions_revoked", revoked),
		)

		return nil
	})
	if err != nil {
		srv.logger.WarnContext(ctx, "Password reset failed", slog.Any("error", err))

		return err
	}

	return nil
}
