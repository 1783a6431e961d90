package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, transactionHandler *TransactionHandler, analyticsHandler *AnalyticsHandler, categoryHandler *CategoryHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/recent", transactionHandler.GetRecentTransactions)
	transactions.GET("/years", transactionHandler.GetAvailableYears)
	transactions.DELETE("/batch", transactionHandler.BatchDeleteTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.GET("/breakdown", analyticsHandler.GetCategoryBreakdown)
	analytics.GET("/top-categories", analyticsHandler.GetTopCategories)
	analytics.GET("/trend/:year", analyticsHandler.GetMonthlyTrend)
	analytics.GET("/summary/:year", analyticsHandler.GetYearlySummary)
	analytics.GET("/averages", analyticsHandler.GetRollingAverages)
	analytics.GET("/comparison/:year/:month", analyticsHandler.GetComparison)
	analytics.GET("/current-month", analyticsHandler.GetCurrentMonthStats)

	// Category catalog
	api.GET("/categories", categoryHandler.GetCategories)

	// WebSocket endpoint for cache invalidation events
	e.GET("/ws", wsHandler.HandleWS)
}
