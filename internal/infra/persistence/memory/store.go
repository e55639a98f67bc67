// Package memory provides an in-process implementation of the persistence
// interfaces. It backs the use case tests and local development runs where a
// PostgreSQL instance is not available. All operations are guarded by a
// single mutex.
package memory

import (
	"context"
	"sync"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds all three table equivalents behind one lock.
type Store struct {
	mu sync.Mutex

	users       map[uuid.UUID]*entity.User
	sessions    map[uuid.UUID]*entity.Session
	resetTokens map[uuid.UUID]*entity.PasswordResetToken
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]*entity.User),
		sessions:    make(map[uuid.UUID]*entity.Session),
		resetTokens: make(map[uuid.UUID]*entity.PasswordResetToken),
	}
}

// SeedUser inserts or replaces a user row. Test and bootstrap helper.
func (s *Store) SeedUser(user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *user
	s.users[user.ID] = &clone
}

// UserRepo returns a UserRepository view of the store.
func (s *Store) UserRepo() repository.UserRepository {
	return &userRepository{store: s}
}

// SessionRepo returns a SessionRepository view of the store.
func (s *Store) SessionRepo() repository.SessionRepository {
	return &sessionRepository{store: s}
}

// ResetTokenRepo returns a ResetTokenRepository view of the store.
func (s *Store) ResetTokenRepo() repository.ResetTokenRepository {
	return &resetTokenRepository{store: s}
}

// NewTransactionManager returns a pass-through TransactionManager. Each
// repository operation is individually atomic under the store lock, but there
// is no rollback: a callback that fails midway leaves its earlier writes in
// place. Acceptable for tests and development runs; production wiring uses
// the gorm manager.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &memoryTransactionManager{store: store}
}

type memoryTransactionManager struct {
	store *Store
}

func (tm *memoryTransactionManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&memoryRepositoryFactory{store: tm.store})
}

type memoryRepositoryFactory struct {
	store *Store
}

func (f *memoryRepositoryFactory) UserRepo() repository.UserRepository {
	return f.store.UserRepo()
}

func (f *memoryRepositoryFactory) SessionRepo() repository.SessionRepository {
	return f.store.SessionRepo()
}

func (f *memoryRepositoryFactory) ResetTokenRepo() repository.ResetTokenRepository {
	return f.store.ResetTokenRepo()
}
