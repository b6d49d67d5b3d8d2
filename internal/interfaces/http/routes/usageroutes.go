package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/interfaces/http/handlers"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
)

// UsageRouteConfig holds dependencies for the programmatic API surface.
type UsageRouteConfig struct {
	UsageHandler     *handlers.UsageHandler
	APIKeyMiddleware *middleware.APIKeyAuthMiddleware
}

// SetupUsageRoutes configures the API-key-authenticated routes.
func SetupUsageRoutes(engine *gin.Engine, cfg *UsageRouteConfig) {
	api := engine.Group("/api/v1")
	api.Use(cfg.APIKeyMiddleware.RequireKey())
	{
		api.GET("/usage", cfg.UsageHandler.Get)
	}
}
