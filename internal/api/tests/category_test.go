package api_test

import (
	"net/http"
	"testing"

	"github.com/rongwang/fintrack-server/internal/api/testutils"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/categories", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	testutils.DecodeData(t, w, &categories)
	assert.Len(t, categories, 12)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/categories",
		models.CreateCategoryRequest{Name: "Pets", Type: models.TypeExpense}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pets models.Category
	testutils.DecodeData(t, w, &pets)
	assert.False(t, pets.IsDefault)

	name := "Pet care"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/categories/"+pets.ID,
		models.UpdateCategoryRequest{Name: &name}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// System categories are read-only
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/categories/"+foodCategoryID, nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A category in use cannot be deleted
	for i := 0; i < 3; i++ {
		createTransaction(t, testCtx, map[string]interface{}{"category_id": pets.ID, "transaction_type": "expense", "amount": 5})
	}
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/budgets",
		map[string]interface{}{"category_id": pets.ID, "amount": 100, "month": 1, "year": 2024}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/categories/"+pets.ID, nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	env := testutils.DecodeEnvelope(t, w)
	assert.Contains(t, env.Error, "3 transactions")
	assert.Contains(t, env.Error, "1 budgets")

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/categories", nil, headers)
	testutils.DecodeData(t, w, &categories)
	assert.Len(t, categories, 13)
}
