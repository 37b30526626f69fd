package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	transactionHandler *TransactionHandler,
	categoryHandler *CategoryHandler,
	budgetHandler *BudgetHandler,
	dashboardHandler *DashboardHandler,
	reportHandler *ReportHandler,
	apiKeyHandler *APIKeyHandler,
	receiptHandler *ReceiptHandler,
	wsHandler *WebSocketHandler,
) {
	// Session surface (Auth0-authenticated first-party client)
	api := e.Group("/api/v1")

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate())
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	if receiptHandler != nil {
		transactions.POST("/:id/receipt", receiptHandler.UploadReceipt)
		transactions.GET("/:id/receipt", receiptHandler.GetReceiptURL)
		transactions.DELETE("/:id/receipt", receiptHandler.DeleteReceipt)
	}

	// Category routes (protected)
	categories := api.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.GET("/:id/can-delete", categoryHandler.CanDeleteCategory)

	// Budget routes (protected)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware.Authenticate())
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/alerts", budgetHandler.GetAlerts)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetProgress)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.Use(authMiddleware.Authenticate())
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	// Report routes (protected)
	reports := api.Group("/reports")
	reports.Use(authMiddleware.Authenticate())
	reports.GET("/summary", reportHandler.GetSummary)

	// API key management routes (protected)
	apiKeys := api.Group("/api-keys")
	apiKeys.Use(authMiddleware.Authenticate())
	apiKeys.POST("", apiKeyHandler.CreateAPIKey)
	apiKeys.GET("", apiKeyHandler.GetAPIKeys)
	apiKeys.DELETE("/:id", apiKeyHandler.RevokeAPIKey)

	// WebSocket route (protected)
	if wsHandler != nil {
		ws := api.Group("/ws")
		ws.Use(authMiddleware.Authenticate())
		ws.GET("", wsHandler.HandleWS)
	}
}

// RegisterExternalRoutes sets up the API-key-gated external surface
func RegisterExternalRoutes(
	e *echo.Echo,
	apiKeyAuth *middleware.APIKeyAuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	externalHandler *ExternalHandler,
) {
	external := e.Group("/api/external/v1")
	external.Use(apiKeyAuth.Authenticate())
	external.Use(middleware.RateLimitMiddleware(rateLimiter))

	external.POST("/transactions", externalHandler.CreateTransaction,
		middleware.RequirePermission(domain.PermissionTransactionsCreate))
	external.DELETE("/transactions/:id", externalHandler.DeleteTransaction,
		middleware.RequirePermission(domain.PermissionTransactionsDelete))
	external.GET("/transactions", externalHandler.GetTransactions)
	external.GET("/categories", externalHandler.GetCategories)
}
