package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/service"
	"github.com/rongwang/fintrack-server/internal/utils"
)

// Handler handles API requests
type Handler struct {
	service service.Service
	logger  *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &Handler{service: svc, logger: logger.WithComponent("api")}
}

// SetupRoutes registers every route on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(h.service, h.logger))

	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/logout", h.Logout)

	wallets := protected.Group("/wallets")
	wallets.GET("", h.ListWallets)
	wallets.POST("", h.CreateWallet)
	wallets.GET("/:id", h.GetWallet)
	wallets.PUT("/:id", h.UpdateWallet)
	wallets.DELETE("/:id", h.DeleteWallet)

	categories := protected.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.GET("", h.ListTransactions)
	transactions.POST("", h.CreateTransaction)
	transactions.GET("/export", h.ExportTransactions)
	transactions.GET("/:id", h.GetTransaction)
	transactions.PUT("/:id", h.UpdateTransaction)
	transactions.DELETE("/:id", h.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.GET("", h.ListBudgets)
	budgets.POST("", h.CreateBudget)
	budgets.POST("/copy", h.CopyBudgets)
	budgets.GET("/:id", h.GetBudget)
	budgets.PUT("/:id", h.UpdateBudget)
	budgets.DELETE("/:id", h.DeleteBudget)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/summary", h.DashboardSummary)
	dashboard.GET("/monthly", h.MonthlyStats)
	dashboard.GET("/by-category", h.CategoryBreakdown)
}

// Health is the liveness probe
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
