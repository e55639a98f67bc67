package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"campus/config"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/infra/auth"
	"campus/internal/infra/persistence/memory"
	"campus/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// stubHasher replaces argon2 in lifecycle tests so they stay fast. The
// encoding is trivially reversible, which is fine: these tests exercise the
// lifecycle rules, not the hash.
type stubHasher struct {
	mu        sync.Mutex
	simulated int
}

func (h *stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *stubHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

func (h *stubHasher) SimulateVerify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.simulated++
}

func (h *stubHasher) simulatedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.simulated
}

// capturingNotifier records delivered reset tokens for inspection.
type capturingNotifier struct {
	mu     sync.Mutex
	tokens []string
	users  []uuid.UUID
	err    error
}

func (n *capturingNotifier) DeliverResetToken(_ context.Context, user *entity.User, rawToken string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, rawToken)
	n.users = append(n.users, user.ID)

	return n.err
}

func (n *capturingNotifier) delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.tokens...)
}

// authFixtures wires the lifecycle services against the in-memory store with
// a real token codec.
type authFixtures struct {
	store    *memory.Store
	hasher   *stubHasher
	codec    service.TokenCodec
	notifier *capturingNotifier

	authSvc    usecase.AuthUsecase
	sessionSvc usecase.SessionUsecase
	resetSvc   usecase.PasswordResetUsecase
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthFixtures(t *testing.T, maxActiveSessions int) *authFixtures {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.Auth = &config.AuthConfig{
		MaxActiveSessions: maxActiveSessions,
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   30 * 24 * time.Hour,
		ResetTokenTTL:     30 * time.Minute,
	}

	codec, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	hasher := &stubHasher{}
	notifier := &capturingNotifier{}
	txManager := memory.NewTransactionManager(store)
	logger := newDiscardLogger()

	return &authFixtures{
		store:      store,
		hasher:     hasher,
		codec:      codec,
		notifier:   notifier,
		authSvc:    NewAuthService(txManager, hasher, codec, logger, maxActiveSessions),
		sessionSvc: NewSessionService(txManager, logger),
		resetSvc:   NewResetService(txManager, hasher, codec, notifier, logger),
	}
}

// seedUser inserts an active user with the given password.
func (f *authFixtures) seedUser(t *testing.T, email, password string) *entity.User {
	t.Helper()

	return f.seedUserWithStatus(t, email, password, entity.StatusActive)
}

func (f *authFixtures) seedUserWithStatus(t *testing.T, email, password string, status entity.UserStatus) *entity.User {
	t.Helper()

	now := time.Now()
	user := &entity.User{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		Email:     email,
		Type:      entity.UserTypeStudent,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if password != "" {
		hash, err := f.hasher.Hash(password)
		require.NoError(t, err)
		user.PasswordHash = &hash
		changedAt := now.Add(-time.Hour)
		user.PasswordChangedAt = &changedAt
	}

	f.store.SeedUser(user)

	return user
}

// login is a shorthand for a successful login returning the token pair.
func (f *authFixtures) login(t *testing.T, email, password string) *entity.TokenPair {
	t.Helper()

	out, err := f.authSvc.Login(context.Background(), &usecase.LoginInput{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.NotNil(t, out.TokenPair)

	return out.TokenPair
}
