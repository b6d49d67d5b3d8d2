package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/interfaces/http/handlers"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
)

// AccountRouteConfig holds dependencies for account routes.
type AccountRouteConfig struct {
	AccountHandler *handlers.AccountHandler
	APIKeyHandler  *handlers.APIKeyHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupAccountRoutes configures the authenticated account surface. Rotation
// and deletion get the rate limiter; both are destructive enough to deserve
// it.
func SetupAccountRoutes(engine *gin.Engine, cfg *AccountRouteConfig) {
	account := engine.Group("/account")
	account.Use(cfg.AuthMiddleware.RequireAuth())
	{
		account.GET("/dashboard", cfg.AccountHandler.GetDashboard)
		account.GET("/api-key", cfg.APIKeyHandler.Get)

		limited := account.Group("")
		limited.Use(cfg.RateLimiter.LimitByUser())
		{
			limited.POST("/api-key/rotate", cfg.APIKeyHandler.Rotate)
			limited.DELETE("", cfg.AccountHandler.Delete)
		}
	}
}
