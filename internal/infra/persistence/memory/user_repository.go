package memory

import (
	"context"
	"strings"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func (repo *userRepository) FindByEmail(_ context.Context, email string, tenantID *uuid.UUID) (*entity.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	needle := strings.ToLower(email)
	for _, user := range repo.store.users {
		if user.Email != needle {
			continue
		}
		if tenantID != nil && user.TenantID != *tenantID {
			continue
		}

		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	clone := *user

	return &clone, nil
}

func (repo *userRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	loginAt := at
	user.LastLoginAt = &loginAt

	return nil
}

func (repo *userRepository) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	newHash := hash
	newChangedAt := changedAt
	user.PasswordHash = &newHash
	user.PasswordChangedAt = &newChangedAt
	user.UpdatedAt = changedAt

	return nil
}

// AcquireSessionMutex is a no-op beyond existence checking. The store mutex
// already serializes everything inside Execute.
func (repo *userRepository) AcquireSessionMutex(_ context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.users[id]; !ok {
		return repository.ErrUserNotFound
	}

	return nil
}
