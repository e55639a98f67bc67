package postgres

import (
	"context"
	"time"

	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// resetTokenRepository implements the repository.ResetTokenRepository interface.
type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository is the constructor for resetTokenRepository.
func NewResetTokenRepository(db *gorm.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create persists a new hashed reset token.
func (repo *resetTokenRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	tokenM := model.FromResetTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create reset token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindValid retrieves the unconsumed token matching the hash. Expiry is left
// to the caller.
func (repo *resetTokenRepository) FindValid(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	var tokenM model.PasswordResetTokenModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL", tokenHash).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetTokenNotFound
		}

		return nil, errors.WithStack(err)
	}

	return model.ToResetTokenDomain(&tokenM), nil
}

// MarkUsed consumes the token permanently. The used_at guard keeps the first
// consumption timestamp if two calls race.
func (repo *resetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrResetTokenNotFound
	}

	return nil
}

// InvalidateAllForUser marks every unconsumed token of the user used.
func (repo *resetTokenRepository) InvalidateAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", at)
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteExpired hard-deletes tokens that expired before the cutoff.
func (repo *resetTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&model.PasswordResetTokenModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}
