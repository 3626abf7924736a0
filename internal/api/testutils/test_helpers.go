package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/api"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/events"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/rongwang/fintrack-server/internal/service"
	"github.com/rongwang/fintrack-server/internal/utils"
	"github.com/stretchr/testify/require"
)

const (
	TestJWTSecret = "test-secret-key-0123456789"
	TestPassword  = "testpassword"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	Tokens      *auth.TokenManager
	Publisher   *events.MemoryPublisher
	TestUserID  string
	TestUserJWT string
}

// SetupTestContext wires the real router, service and auth stack over the
// in-memory repository and registers one test user.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	repo := repository.NewMemoryRepository()
	tokens := auth.NewTokenManager(TestJWTSecret, "fintrack-test", time.Hour)
	publisher := &events.MemoryPublisher{}
	logger := utils.NopLogger()

	svc := service.NewDefaultService(service.Deps{
		Repo:   repo,
		Tokens: tokens,
		// cheap parameters keep the suite fast
		Hasher:    auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		Publisher: publisher,
		Logger:    logger,
	})

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger), api.CORS([]string{"http://localhost:3000"}))

	handler := api.NewHandler(svc, logger)
	handler.SetupRoutes(router)

	testCtx := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Tokens:     tokens,
		Publisher:  publisher,
	}
	testCtx.TestUserID, testCtx.TestUserJWT = testCtx.RegisterUser(t, "testuser")
	return testCtx
}

// CleanupTestContext releases test resources
func CleanupTestContext(t *TestContext) {
	if t.Publisher != nil {
		t.Publisher.Close()
	}
}

// RegisterUser registers username@example.com through the service and
// returns its id and token.
func (tc *TestContext) RegisterUser(t *testing.T, username string) (string, string) {
	t.Helper()
	resp, err := tc.Service.Register(context.Background(), models.RegisterRequest{
		Name:     "Test User",
		Username: username,
		Email:    username + "@example.com",
		Password: TestPassword,
	})
	require.NoError(t, err, "Failed to create test user")
	return resp.User.ID, resp.Token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// Envelope is the decoded success body; Data is left raw for DecodeData
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *models.Meta    `json:"meta"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
}

// DecodeEnvelope parses the response body
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData parses the envelope's data into dst
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) Envelope {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst), w.Body.String())
	return env
}
