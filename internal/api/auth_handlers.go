package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/models"
)

// Register creates an account and returns its first token
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "User registered successfully", resp)
}

// Login authenticates by username or email
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Login successful", resp)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", user)
}

// Logout is stateless; clients discard the token
func (h *Handler) Logout(c *gin.Context) {
	respondOK(c, "Logged out successfully", nil)
}
