package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/models"
)

// ListBudgets accepts optional month and year query parameters
func (h *Handler) ListBudgets(c *gin.Context) {
	month, err := queryInt("month", c.Query("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	year, err := queryInt("year", c.Query("year"))
	if err != nil {
		h.fail(c, err)
		return
	}

	budgets, err := h.service.ListBudgets(c.Request.Context(), currentUserID(c), month, year)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", budgets)
}

func (h *Handler) CreateBudget(c *gin.Context) {
	var req models.CreateBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var err error
	if req.CategoryID, err = NormalizeID("category_id", req.CategoryID); err != nil {
		h.fail(c, err)
		return
	}

	budget, err := h.service.CreateBudget(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "Budget created successfully", budget)
}

func (h *Handler) GetBudget(c *gin.Context) {
	budgetID, err := pathID(c.Param("id"), "Budget")
	if err != nil {
		h.fail(c, err)
		return
	}

	budget, err := h.service.GetBudget(c.Request.Context(), currentUserID(c), budgetID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", budget)
}

func (h *Handler) UpdateBudget(c *gin.Context) {
	budgetID, err := pathID(c.Param("id"), "Budget")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.UpdateBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.CategoryID, err = NormalizeID("category_id", req.CategoryID); err != nil {
		h.fail(c, err)
		return
	}

	budget, err := h.service.UpdateBudget(c.Request.Context(), currentUserID(c), budgetID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Budget updated successfully", budget)
}

func (h *Handler) DeleteBudget(c *gin.Context) {
	budgetID, err := pathID(c.Param("id"), "Budget")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.service.DeleteBudget(c.Request.Context(), currentUserID(c), budgetID); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Budget deleted successfully", nil)
}

// CopyBudgets seeds a period from another one
func (h *Handler) CopyBudgets(c *gin.Context) {
	var req models.CopyBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	budgets, err := h.service.CopyBudgets(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "Budgets copied successfully", budgets)
}
