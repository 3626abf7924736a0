package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/models"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "Category created successfully", category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, err := pathID(c.Param("id"), "Category")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), currentUserID(c), categoryID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Category updated successfully", category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, err := pathID(c.Param("id"), "Category")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), currentUserID(c), categoryID); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Category deleted successfully", nil)
}
