package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/interfaces/http/handlers"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
)

// BillingRouteConfig holds dependencies for billing routes.
type BillingRouteConfig struct {
	CheckoutHandler *handlers.CheckoutHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// SetupBillingRoutes configures billing routes.
func SetupBillingRoutes(engine *gin.Engine, cfg *BillingRouteConfig) {
	billing := engine.Group("/billing")
	billing.Use(cfg.AuthMiddleware.RequireAuth())
	{
		billing.POST("/checkout", cfg.CheckoutHandler.Create)
	}
}
