package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/events"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foodCategoryID = "00000000-0000-4000-8000-000000000005"

// testClock starts at 2024-03-15 10:00 UTC and ticks one second per call
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	svc       *DefaultService
	repo      *repository.MemoryRepository
	publisher *events.MemoryPublisher
	ctx       context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{t: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)}
	repo := repository.NewMemoryRepository()
	publisher := &events.MemoryPublisher{}
	svc := NewDefaultService(Deps{
		Repo:      repo,
		Tokens:    auth.NewTokenManager("test-secret-key-0123456789", "fintrack-test", 24*time.Hour),
		Hasher:    auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		Publisher: publisher,
		Clock:     clock.Now,
	})
	return &testEnv{svc: svc, repo: repo, publisher: publisher, ctx: context.Background()}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	resp, err := e.svc.Register(e.ctx, models.RegisterRequest{
		Name:     "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) wallet(t *testing.T, userID, name string, balance int64) *models.Wallet {
	t.Helper()
	b := decimal.NewFromInt(balance)
	w, err := e.svc.CreateWallet(e.ctx, userID, models.CreateWalletRequest{Name: name, Type: models.WalletBank, Balance: &b})
	require.NoError(t, err)
	return w
}

func (e *testEnv) balance(t *testing.T, userID, walletID string) decimal.Decimal {
	t.Helper()
	w, err := e.repo.GetWallet(e.ctx, userID, walletID)
	require.NoError(t, err)
	require.NotNil(t, w)
	return w.Balance
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperror.Is(err, kind), "expected %s, got %v", kind.Code(), err)
}

func TestRegisterProvisionsStarterData(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.svc.Register(env.ctx, models.RegisterRequest{
		Name:     "Alice",
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int((24 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	wallets, err := env.svc.ListWallets(env.ctx, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, models.DefaultWalletName, wallets[0].Name)
	assert.Equal(t, models.WalletCash, wallets[0].Type)
	assert.True(t, wallets[0].IsDefault)
	assert.True(t, wallets[0].Balance.IsZero())

	categories, err := env.svc.ListCategories(env.ctx, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, categories, 12)
	income := 0
	for _, c := range categories {
		assert.True(t, c.IsDefault)
		if c.Type == models.TypeIncome {
			income++
		}
	}
	assert.Equal(t, 4, income)

	// a second registration reuses the shared categories
	bob := env.register(t, "bob")
	categories, err = env.svc.ListCategories(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 12)
}

func TestRegisterConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.svc.Register(env.ctx, models.RegisterRequest{Name: "Other", Username: "other", Email: "alice@example.com", Password: "password123"})
	assertKind(t, err, apperror.KindConflict)

	_, err = env.svc.Register(env.ctx, models.RegisterRequest{Name: "Other", Username: "alice", Email: "other@example.com", Password: "password123"})
	assertKind(t, err, apperror.KindConflict)

	// the failed registrations left no orphan user behind
	u, err := env.repo.GetUserByEmail(env.ctx, "other@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []models.RegisterRequest{
		{Name: "A", Username: "alice", Email: "a@example.com", Password: "password123"},
		{Name: "Alice", Username: "al", Email: "a@example.com", Password: "password123"},
		{Name: "Alice", Username: "al ice", Email: "a@example.com", Password: "password123"},
		{Name: "Alice", Username: "alice", Email: "not-an-email", Password: "password123"},
		{Name: "Alice", Username: "alice", Email: "a@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := env.svc.Register(env.ctx, req)
		assertKind(t, err, apperror.KindValidation)
	}
}

func TestLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	byUsername, err := env.svc.Login(env.ctx, models.LoginRequest{Identifier: "alice", Password: "password123"})
	require.NoError(t, err)
	byEmail, err := env.svc.Login(env.ctx, models.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, byUsername.User.ID, byEmail.User.ID)

	claims, err := env.svc.VerifyToken(env.ctx, byUsername.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = env.svc.Login(env.ctx, models.LoginRequest{Identifier: "alice", Password: "wrong-password"})
	assertKind(t, err, apperror.KindInvalidCredentials)
	_, err = env.svc.Login(env.ctx, models.LoginRequest{Identifier: "nobody", Password: "password123"})
	assertKind(t, err, apperror.KindInvalidCredentials)

	_, err = env.svc.VerifyToken(env.ctx, "not-a-token")
	assertKind(t, err, apperror.KindUnauthorized)
}

func TestVerifyExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	issued := time.Now().Add(-48 * time.Hour)
	old := auth.NewTokenManager("test-secret-key-0123456789", "fintrack-test", 24*time.Hour).
		WithClock(func() time.Time { return issued })
	token, err := old.Generate(*user)
	require.NoError(t, err)

	_, err = env.svc.VerifyToken(env.ctx, token)
	assertKind(t, err, apperror.KindTokenExpired)
}

func TestGetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	got, err := env.svc.GetCurrentUser(env.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = env.svc.GetCurrentUser(env.ctx, "00000000-0000-0000-0000-000000000000")
	assertKind(t, err, apperror.KindNotFound)
}
