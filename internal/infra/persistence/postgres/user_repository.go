// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the repository.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByEmail retrieves a user by lowercased email, optionally tenant-scoped.
func (repo *userRepository) FindByEmail(ctx context.Context, email string, tenantID *uuid.UUID) (*entity.User, error) {
	tx := repo.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email))
	if tenantID != nil {
		tx = tx.Where("tenant_id = ?", *tenantID)
	}

	var userM model.UserModel
	if err := tx.First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.WithStack(err)
	}

	return model.ToUserDomain(&userM), nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.WithStack(err)
	}

	return model.ToUserDomain(&userM), nil
}

// UpdateLastLogin records a successful login timestamp.
func (repo *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("last_login_at", at)
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdatePasswordHash persists a new credential hash and moves the
// password-changed watermark in a single statement.
func (repo *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":       hash,
			"password_changed_at": changedAt,
		})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// AcquireSessionMutex takes a row-level lock on the user row. The lock lives
// until the surrounding transaction commits or rolls back, which serializes
// session-cap checks for the same user.
func (repo *userRepository) AcquireSessionMutex(ctx context.Context, id uuid.UUID) error {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrUserNotFound
		}

		return errors.WithStack(err)
	}

	return nil
}
