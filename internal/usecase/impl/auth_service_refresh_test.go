package impl

import (
	"context"
	"testing"
	"time"

	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")
	pair := fx.login(t, "student@example.edu", "Password123!")

	rotated, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	assert.Equal(t, pair.SessionID, rotated.SessionID, "rotation keeps the session identity")
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	claims, err := fx.authSvc.VerifyAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The new token refreshes again; the chain continues.
	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: rotated.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_Refresh_ReuseOfRotatedTokenCascades(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	// Two independent devices.
	pairA := fx.login(t, "student@example.edu", "Password123!")
	pairB := fx.login(t, "student@example.edu", "Password123!")

	// Device A rotates once; the original token is now dead.
	rotatedA, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pairA.RefreshToken,
	})
	require.NoError(t, err)

	// Replaying the rotated-away token is theft evidence.
	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pairA.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)

	// The cascade took down every session of the user, device B included.
	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Neither the legitimate rotated token nor device B's token works now.
	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: rotatedA.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)

	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pairB.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
}

func TestAuthService_Refresh_TwiceRotatedTokenIsJustInvalid(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	fx.seedUser(t, "student@example.edu", "Password123!")
	pair := fx.login(t, "student@example.edu", "Password123!")

	first, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	// Only the last rotated-away hash is retained, so a token two rotations
	// old no longer resolves to a session.
	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	fx.seedUser(t, "student@example.edu", "Password123!")
	fx.login(t, "student@example.edu", "Password123!")

	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: "completely-made-up-token",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_RevokedSessionCascades(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	pairA := fx.login(t, "student@example.edu", "Password123!")
	pairB := fx.login(t, "student@example.edu", "Password123!")

	require.NoError(t, fx.authSvc.Logout(context.Background(), pairA.SessionID, user.ID))

	// Using the token of a logged-out session is treated as reuse.
	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pairA.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)

	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pairB.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	fx.seedUser(t, "student@example.edu", "Password123!")
	pair := fx.login(t, "student@example.edu", "Password123!")

	// Age the session past its expiry directly in the store.
	expireSession(t, fx, pair, time.Now().Add(-time.Minute))

	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)
}

func TestAuthService_Refresh_SuspendedAccountBlocked(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")
	pair := fx.login(t, "student@example.edu", "Password123!")

	// Suspend the account after login; the next refresh must fail even though
	// the session itself is fine.
	user.Status = entity.StatusSuspended
	fx.store.SeedUser(user)

	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrAccountSuspended)
}

func TestAuthService_Refresh_ValidationFailure(t *testing.T) {
	fx := newAuthFixtures(t, 5)

	_, err := fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

// expireSession rewrites the session's expiry through the repository
// interface so the test does not reach into store internals.
func expireSession(t *testing.T, fx *authFixtures, pair *entity.TokenPair, expiresAt time.Time) {
	t.Helper()

	sessionRepo := fx.store.SessionRepo()
	session, err := sessionRepo.FindByID(context.Background(), pair.SessionID)
	require.NoError(t, err)

	// Rotate in place with the same hash pair but a past expiry.
	err = sessionRepo.UpdateRotation(context.Background(), session.ID, session.TokenHash, session.TokenHash, expiresAt, session.LastUsedAt)
	require.NoError(t, err)
}
