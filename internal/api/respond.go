package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/utils"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.Response{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: message, Data: data})
}

// errorBody classifies err and logs internal failures with their cause.
// Clients only ever see the public message.
func errorBody(c *gin.Context, logger *utils.Logger, err error) (int, models.ErrorResponse) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		logger.LogError(c.Request.Context(), "Request failed", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey))
	}
	return appErr.Kind.Status(), models.ErrorResponse{
		Success: false,
		Code:    appErr.Kind.Code(),
		Error:   appErr.PublicMessage(),
	}
}

func abortWithError(c *gin.Context, logger *utils.Logger, err error) {
	status, body := errorBody(c, logger, err)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := errorBody(c, h.logger, err)
	c.JSON(status, body)
}

// bindJSON decodes the body and reports binding failures as validation errors
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperror.Validation("Invalid request: %v", err))
		return false
	}
	return true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
