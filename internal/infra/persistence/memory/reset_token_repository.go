package memory

import (
	"context"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"

	"github.com/google/uuid"
)

type resetTokenRepository struct {
	store *Store
}

func (repo *resetTokenRepository) Create(_ context.Context, token *entity.PasswordResetToken) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	clone := *token
	repo.store.resetTokens[token.ID] = &clone

	return nil
}

func (repo *resetTokenRepository) FindValid(_ context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, token := range repo.store.resetTokens {
		if token.TokenHash == tokenHash && !token.IsUsed() {
			clone := *token

			return &clone, nil
		}
	}

	return nil, repository.ErrResetTokenNotFound
}

func (repo *resetTokenRepository) MarkUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	token, ok := repo.store.resetTokens[id]
	if !ok || token.IsUsed() {
		return repository.ErrResetTokenNotFound
	}

	usedAt := at
	token.UsedAt = &usedAt

	return nil
}

func (repo *resetTokenRepository) InvalidateAllForUser(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var invalidated int64
	for _, token := range repo.store.resetTokens {
		if token.UserID != userID || token.IsUsed() {
			continue
		}

		usedAt := at
		token.UsedAt = &usedAt
		invalidated++
	}

	return invalidated, nil
}

func (repo *resetTokenRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var deleted int64
	for id, token := range repo.store.resetTokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(repo.store.resetTokens, id)
			deleted++
		}
	}

	return deleted, nil
}
