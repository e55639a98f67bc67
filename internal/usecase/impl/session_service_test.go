package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "campus/internal/domain/errors"
	"campus/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_ListActiveSessions_OrderAndCurrentFlag(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	first := fx.login(t, "student@example.edu", "Password123!")
	second := fx.login(t, "student@example.edu", "Password123!")

	// Refreshing the first session bumps its last-used time past the second's.
	time.Sleep(5 * time.Millisecond)
	rotated, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, &second.SessionID)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, rotated.SessionID, infos[0].ID, "most recently used first")
	assert.Equal(t, second.SessionID, infos[1].ID)

	assert.False(t, infos[0].Current)
	assert.True(t, infos[1].Current)
}

func TestSessionService_ListActiveSessions_ExcludesRevoked(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	keep := fx.login(t, "student@example.edu", "Password123!")
	drop := fx.login(t, "student@example.edu", "Password123!")

	require.NoError(t, fx.sessionSvc.RevokeSession(context.Background(), drop.SessionID, user.ID))

	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, keep.SessionID, infos[0].ID)
}

func TestSessionService_ListActiveSessions_UnknownUser(t *testing.T) {
	fx := newAuthFixtures(t, 5)

	_, err := fx.sessionSvc.ListActiveSessions(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestSessionService_RevokeSession_OtherDevice(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	device := fx.login(t, "student@example.edu", "Password123!")

	require.NoError(t, fx.sessionSvc.RevokeSession(context.Background(), device.SessionID, user.ID))

	// The revoked device's refresh token now trips reuse handling.
	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: device.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
}

func TestSessionService_RevokeSession_Forbidden(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	fx.seedUser(t, "owner@example.edu", "Password123!")
	intruder := fx.seedUser(t, "intruder@example.edu", "Password123!")
	pair := fx.login(t, "owner@example.edu", "Password123!")

	err := fx.sessionSvc.RevokeSession(context.Background(), pair.SessionID, intruder.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}
