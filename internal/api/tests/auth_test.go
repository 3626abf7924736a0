package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/rongwang/fintrack-server/internal/api/testutils"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful registration
	registerReq := models.RegisterRequest{
		Name:     "New User",
		Username: "newuser",
		Email:    "newuser@example.com",
		Password: "Password123",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/register",
		registerReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)
	var authResp models.AuthResponse
	testutils.DecodeData(t, w, &authResp)
	assert.NotEmpty(t, authResp.Token)
	assert.Equal(t, 3600, authResp.ExpiresIn)
	assert.Equal(t, "newuser", authResp.User.Username)
	assert.NotContains(t, w.Body.String(), "password")

	// Test case 2: Duplicate email
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/register",
		registerReq,
		nil,
	)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := testutils.DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)

	// Test case 3: Invalid request (missing required fields)
	invalidReq := models.RegisterRequest{
		Email: "invalid@example.com",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/register",
		invalidReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutils.DecodeEnvelope(t, w).Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful login by email and by username
	for _, req := range []models.LoginRequest{
		{Email: "testuser@example.com", Password: testutils.TestPassword},
		{Identifier: "testuser", Password: testutils.TestPassword},
		{UsernameOrEmail: "testuser", Password: testutils.TestPassword},
	} {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", req, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var authResp models.AuthResponse
		testutils.DecodeData(t, w, &authResp)
		assert.Equal(t, testCtx.TestUserID, authResp.User.ID)
	}

	// Test case 2: Invalid credentials
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "testuser@example.com", Password: "wrongpassword"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", testutils.DecodeEnvelope(t, w).Code)

	// Test case 3: User not found
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "nonexistent@example.com", Password: testutils.TestPassword},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/auth/me", nil, testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	var user models.User
	testutils.DecodeData(t, w, &user)
	assert.Equal(t, testCtx.TestUserID, user.ID)

	// Missing header
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/wallets", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", testutils.DecodeEnvelope(t, w).Code)

	// Wrong scheme
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/wallets", nil,
		map[string]string{"Authorization": "Token " + testCtx.TestUserJWT})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/wallets", nil, testutils.AuthHeaders("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", testutils.DecodeEnvelope(t, w).Code)

	// Expired token is reported distinctly
	issued := time.Now().Add(-2 * time.Hour)
	expired, err := auth.NewTokenManager(testutils.TestJWTSecret, "fintrack-test", time.Hour).
		WithClock(func() time.Time { return issued }).
		Generate(models.User{ID: testCtx.TestUserID, Email: "testuser@example.com"})
	require.NoError(t, err)
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/wallets", nil, testutils.AuthHeaders(expired))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", testutils.DecodeEnvelope(t, w).Code)

	// Logout is stateless
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/logout", nil, testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = testutils.PerformRequest(testCtx.Router, http.MethodOptions, "/api/wallets", nil,
		map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/health", nil,
		map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
