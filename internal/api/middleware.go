package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/service"
	"github.com/rongwang/fintrack-server/internal/utils"
)

const (
	userIDKey    = "userId"
	requestIDKey = "requestId"
)

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware(svc service.Service, logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, logger, apperror.Unauthorized("Authentication required"))
			return
		}

		// Check if the Authorization header starts with "Bearer "
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, logger, apperror.Unauthorized("Invalid token format"))
			return
		}

		claims, err := svc.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, logger, err)
			return
		}

		// Set user ID in the context
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// RequestLogger logs one line per request. Client errors log at WARN,
// server errors at ERROR.
func RequestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestID,
		}
		if userID := c.GetString(userIDKey); userID != "" {
			args = append(args, "user_id", userID)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "Request completed", args...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "Request completed", args...)
		default:
			logger.InfoContext(ctx, "Request completed", args...)
		}
	}
}

// CORS adds Access-Control headers for allowed origins and short-circuits
// preflight requests.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
			break
		}
		if origin != "" {
			allowed[strings.ToLower(origin)] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := allowed[strings.ToLower(origin)]
			if allowAll || ok {
				if allowAll {
					c.Header("Access-Control-Allow-Origin", "*")
				} else {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
