package memory

import (
	"context"
	"sort"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"

	"github.com/google/uuid"
)

type sessionRepository struct {
	store *Store
}

func (repo *sessionRepository) Create(_ context.Context, session *entity.Session) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	clone := *session
	repo.store.sessions[session.ID] = &clone

	return nil
}

func (repo *sessionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	session, ok := repo.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	clone := *session

	return &clone, nil
}

func (repo *sessionRepository) FindByRefreshHash(_ context.Context, hash string) (*entity.Session, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, session := range repo.store.sessions {
		if session.TokenHash == hash || (session.PrevTokenHash != "" && session.PrevTokenHash == hash) {
			clone := *session

			return &clone, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (repo *sessionRepository) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	now := time.Now()
	var sessions []*entity.Session
	for _, session := range repo.store.sessions {
		if session.UserID != userID || !session.IsActive(now) {
			continue
		}

		clone := *session
		sessions = append(sessions, &clone)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUsedAt.After(sessions[j].LastUsedAt)
	})

	return sessions, nil
}

// UpdateRotation mirrors the SQL compare-and-swap: the stored hash must still
// equal oldHash and the row must be unrevoked, all checked under the lock.
func (repo *sessionRepository) UpdateRotation(_ context.Context, id uuid.UUID, oldHash, newHash string, expiresAt, usedAt time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	session, ok := repo.store.sessions[id]
	if !ok {
		return repository.ErrSessionRotated
	}
	if session.TokenHash != oldHash || session.IsRevoked() {
		return repository.ErrSessionRotated
	}

	session.PrevTokenHash = oldHash
	session.TokenHash = newHash
	session.ExpiresAt = expiresAt
	session.LastUsedAt = usedAt

	return nil
}

func (repo *sessionRepository) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	session, ok := repo.store.sessions[id]
	if !ok || session.IsRevoked() {
		return nil
	}

	revokedAt := at
	session.RevokedAt = &revokedAt

	return nil
}

func (repo *sessionRepository) RevokeAllForUser(_ context.Context, userID uuid.UUID, exceptID *uuid.UUID, at time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var revoked int64
	for _, session := range repo.store.sessions {
		if session.UserID != userID || session.IsRevoked() {
			continue
		}
		if exceptID != nil && session.ID == *exceptID {
			continue
		}

		revokedAt := at
		session.RevokedAt = &revokedAt
		revoked++
	}

	return revoked, nil
}

func (repo *sessionRepository) CountActive(_ context.Context, userID uuid.UUID) (int, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	now := time.Now()
	count := 0
	for _, session := range repo.store.sessions {
		if session.UserID == userID && session.IsActive(now) {
			count++
		}
	}

	return count, nil
}

func (repo *sessionRepository) EvictOldest(_ context.Context, userID uuid.UUID, keepCount int, at time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if keepCount < 0 {
		keepCount = 0
	}

	now := time.Now()
	var active []*entity.Session
	for _, session := range repo.store.sessions {
		if session.UserID == userID && session.IsActive(now) {
			active = append(active, session)
		}
	}
	if len(active) <= keepCount {
		return 0, nil
	}

	// Newest first; everything beyond keepCount is evicted.
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	var evicted int64
	for _, session := range active[keepCount:] {
		revokedAt := at
		session.RevokedAt = &revokedAt
		evicted++
	}

	return evicted, nil
}

func (repo *sessionRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var deleted int64
	for id, session := range repo.store.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(repo.store.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}
