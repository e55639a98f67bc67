package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(userID uuid.UUID, tokenHash string, expiresAt time.Time) *entity.Session {
	now := time.Now()

	return &entity.Session{
		ID:         uuid.New(),
		UserID:     userID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		LastUsedAt: now,
	}
}

func TestSessionRepository_FindByRefreshHash_MatchesCurrentAndPrevious(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()

	session := newSession(uuid.New(), "hash-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.UpdateRotation(ctx, session.ID, "hash-1", "hash-2", time.Now().Add(time.Hour), time.Now()))

	byCurrent, err := repo.FindByRefreshHash(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, session.ID, byCurrent.ID)

	byPrevious, err := repo.FindByRefreshHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, byPrevious.ID)
	assert.Equal(t, "hash-1", byPrevious.PrevTokenHash)

	_, err = repo.FindByRefreshHash(ctx, "hash-0")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_UpdateRotation_CompareAndSwap(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()

	session := newSession(uuid.New(), "hash-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	// Stale expected hash loses.
	err := repo.UpdateRotation(ctx, session.ID, "stale", "hash-2", time.Now().Add(time.Hour), time.Now())
	assert.ErrorIs(t, err, repository.ErrSessionRotated)

	// Revoked row loses too.
	require.NoError(t, repo.Revoke(ctx, session.ID, time.Now()))
	err = repo.UpdateRotation(ctx, session.ID, "hash-1", "hash-2", time.Now().Add(time.Hour), time.Now())
	assert.ErrorIs(t, err, repository.ErrSessionRotated)
}

func TestSessionRepository_UpdateRotation_ConcurrentSingleWinner(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()

	session := newSession(uuid.New(), "hash-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	const racers = 16

	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			newHash := "hash-new-" + string(rune('a'+i))
			results <- repo.UpdateRotation(ctx, session.ID, "hash-1", newHash, time.Now().Add(time.Hour), time.Now())
		}(i)
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, repository.ErrSessionRotated)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent rotation may succeed")
}

func TestSessionRepository_RevokeAllForUser_RespectsException(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()
	userID := uuid.New()

	var keep *entity.Session
	for i := 0; i < 3; i++ {
		s := newSession(userID, uuid.NewString(), time.Now().Add(time.Hour))
		require.NoError(t, repo.Create(ctx, s))
		if i == 1 {
			keep = s
		}
	}
	// Another user's session stays untouched.
	other := newSession(uuid.New(), uuid.NewString(), time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, other))

	revoked, err := repo.RevokeAllForUser(ctx, userID, &keep.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), revoked)

	active, err := repo.FindActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)

	otherActive, err := repo.FindActiveByUser(ctx, other.UserID)
	require.NoError(t, err)
	assert.Len(t, otherActive, 1)
}

func TestSessionRepository_EvictOldest(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now()
	sessions := make([]*entity.Session, 0, 4)
	for i := 0; i < 4; i++ {
		s := newSession(userID, uuid.NewString(), base.Add(time.Hour))
		s.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, s))
		sessions = append(sessions, s)
	}

	evicted, err := repo.EvictOldest(ctx, userID, 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), evicted)

	active, err := repo.FindActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 2)

	kept := map[uuid.UUID]bool{active[0].ID: true, active[1].ID: true}
	assert.True(t, kept[sessions[2].ID], "newest sessions survive")
	assert.True(t, kept[sessions[3].ID])
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	store := NewStore()
	repo := store.SessionRepo()
	ctx := context.Background()
	userID := uuid.New()

	old := newSession(userID, "old", time.Now().Add(-48*time.Hour))
	fresh := newSession(userID, "fresh", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	deleted, err := repo.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, old.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	_, err = repo.FindByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestResetTokenRepository_SingleUseLifecycle(t *testing.T) {
	store := NewStore()
	repo := store.ResetTokenRepo()
	ctx := context.Background()
	userID := uuid.New()

	token := &entity.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: "reset-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, token))

	found, err := repo.FindValid(ctx, "reset-hash")
	require.NoError(t, err)
	assert.Equal(t, token.ID, found.ID)

	require.NoError(t, repo.MarkUsed(ctx, token.ID, time.Now()))

	// Consumed tokens no longer resolve, and a second consumption fails.
	_, err = repo.FindValid(ctx, "reset-hash")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)
	assert.ErrorIs(t, repo.MarkUsed(ctx, token.ID, time.Now()), repository.ErrResetTokenNotFound)
}
