package impl

import (
	"context"
	"testing"

	domainerrors "campus/internal/domain/errors"
	"campus/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Logout_Success(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")
	pair := fx.login(t, "student@example.edu", "Password123!")

	require.NoError(t, fx.authSvc.Logout(context.Background(), pair.SessionID, user.ID))

	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Logout is idempotent.
	assert.NoError(t, fx.authSvc.Logout(context.Background(), pair.SessionID, user.ID))
}

func TestAuthService_Logout_ForbiddenForOtherUser(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	owner := fx.seedUser(t, "owner@example.edu", "Password123!")
	intruder := fx.seedUser(t, "intruder@example.edu", "Password123!")
	pair := fx.login(t, "owner@example.edu", "Password123!")

	err := fx.authSvc.Logout(context.Background(), pair.SessionID, intruder.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// The session survives the failed attempt.
	infos, listErr := fx.sessionSvc.ListActiveSessions(context.Background(), owner.ID, nil)
	require.NoError(t, listErr)
	assert.Len(t, infos, 1)
}

func TestAuthService_Logout_UnknownSession(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "Password123!")

	err := fx.authSvc.Logout(context.Background(), uuid.New(), user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "OldPassword1!")
	oldVersion := user.TokenVersion()

	current := fx.login(t, "student@example.edu", "OldPassword1!")
	other := fx.login(t, "student@example.edu", "OldPassword1!")

	err := fx.authSvc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:           user.ID,
		CurrentPassword:  "OldPassword1!",
		NewPassword:      "NewPassword1!",
		CurrentSessionID: &current.SessionID,
	})
	require.NoError(t, err)

	// Only the actor's session survives the cascade.
	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, current.SessionID, infos[0].ID)

	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: other.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)

	// Old credential is dead, new one works.
	_, err = fx.authSvc.Login(context.Background(), &usecase.LoginInput{
		Email:    "student@example.edu",
		Password: "OldPassword1!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	out, err := fx.authSvc.Login(context.Background(), &usecase.LoginInput{
		Email:    "student@example.edu",
		Password: "NewPassword1!",
	})
	require.NoError(t, err)

	// The watermark moved, so newly issued tokens carry a higher version.
	assert.Greater(t, out.User.TokenVersion(), oldVersion)
}

func TestAuthService_ChangePassword_RevokesEverythingWithoutCurrentSession(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "OldPassword1!")
	fx.login(t, "student@example.edu", "OldPassword1!")
	fx.login(t, "student@example.edu", "OldPassword1!")

	err := fx.authSvc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "OldPassword1!",
		NewPassword:     "NewPassword1!",
	})
	require.NoError(t, err)

	infos, err := fx.sessionSvc.ListActiveSessions(context.Background(), user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestAuthService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "OldPassword1!")
	pair := fx.login(t, "student@example.edu", "OldPassword1!")

	err := fx.authSvc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "guess",
		NewPassword:     "NewPassword1!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordMismatch)

	// Nothing changed: the old password still logs in and the session lives.
	_, err = fx.authSvc.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: pair.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword_InvalidatesResetTokens(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "OldPassword1!")

	// An outstanding reset token from before the change.
	require.NoError(t, fx.resetSvc.RequestReset(context.Background(), &usecase.RequestResetInput{
		Email: "student@example.edu",
	}))
	delivered := fx.notifier.delivered()
	require.Len(t, delivered, 1)

	err := fx.authSvc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "OldPassword1!",
		NewPassword:     "NewPassword1!",
	})
	require.NoError(t, err)

	// The token issued before the change no longer works.
	err = fx.resetSvc.PerformReset(context.Background(), &usecase.PerformResetInput{
		Token:       delivered[0],
		NewPassword: "AnotherPassword1!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
}

func TestAuthService_ChangePassword_TooShortNewPassword(t *testing.T) {
	fx := newAuthFixtures(t, 5)
	user := fx.seedUser(t, "student@example.edu", "OldPassword1!")

	err := fx.authSvc.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "OldPassword1!",
		NewPassword:     "short",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}
