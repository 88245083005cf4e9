package routes

import (
	"github.com/labstack/echo"

	"github.com/psapy/dv-backend/internal/container"
	"github.com/psapy/dv-backend/internal/presentation/http/handlers"
)

// SetupRoutes sets up all routes for the application
func SetupRoutes(e *echo.Echo, c *container.Container) {
	callbackHandler := handlers.NewCallbackHandler(c.CallbackReconciler)
	withdrawHandler := handlers.NewWithdrawHandler(c.WithdrawalDispatcher, c.UserRepo, c.WithdrawalWalletRepo)

	// Health check
	e.GET("/health", handlers.HeartBeat)

	api := e.Group("/api/v1")

	// Provider callback
	api.POST("/callback", callbackHandler.Handle())

	// Withdrawal
	api.POST("/withdraw", withdrawHandler.Withdraw())
	api.POST("/sweep", withdrawHandler.Sweep())
}
