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

// sessionRepository implements the repository.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := model.FromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "refresh token hash collision")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "invalid user reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required session information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session by its opaque handle, revoked or not.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return model.ToSessionDomain(&sessionM), nil
}

// FindByRefreshHash retrieves the session whose current or previous
// refresh-token hash equals hash.
func (repo *sessionRepository) FindByRefreshHash(ctx context.Context, hash string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? OR prev_token_hash = ?", hash, hash).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return model.ToSessionDomain(&sessionM), nil
}

// FindActiveByUser returns the user's unrevoked, unexpired sessions ordered
// by most recently used.
func (repo *sessionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionModels []*model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("last_used_at DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for _, sessionM := range sessionModels {
		sessions = append(sessions, model.ToSessionDomain(sessionM))
	}

	return sessions, nil
}

// UpdateRotation performs the compare-and-swap at the heart of refresh
// rotation. The WHERE clause carries the expected current hash, so two
// concurrent refreshes with the same token cannot both succeed: the loser
// matches zero rows and gets ErrSessionRotated.
func (repo *sessionRepository) UpdateRotation(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt, usedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND token_hash = ? AND revoked_at IS NULL", id, oldHash).
		Updates(map[string]any{
			"token_hash":      newHash,
			"prev_token_hash": oldHash,
			"expires_at":      expiresAt,
			"last_used_at":    usedAt,
		})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionRotated
	}

	return nil
}

// Revoke terminally revokes a single session. Already revoked rows are left
// untouched so the original revocation timestamp survives.
func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}

	return nil
}

// RevokeAllForUser revokes every active session of the user except exceptID.
func (repo *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, exceptID *uuid.UUID, at time.Time) (int64, error) {
	tx := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if exceptID != nil {
		tx = tx.Where("id <> ?", *exceptID)
	}

	result := tx.Update("revoked_at", at)
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// CountActive returns the number of active, unexpired sessions for the user.
func (repo *sessionRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(count), nil
}

// EvictOldest revokes the user's oldest active sessions until at most
// keepCount remain. The subquery orders by creation time so the longest-lived
// sessions go first.
func (repo *sessionRepository) EvictOldest(ctx context.Context, userID uuid.UUID, keepCount int, at time.Time) (int64, error) {
	if keepCount < 0 {
		keepCount = 0
	}

	subquery := repo.db.
		Model(&model.SessionModel{}).
		Select("id").
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Offset(keepCount)

	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id IN (?)", subquery).
		Update("revoked_at", at)
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteExpired hard-deletes sessions whose expiry passed before the cutoff.
func (repo *sessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}
