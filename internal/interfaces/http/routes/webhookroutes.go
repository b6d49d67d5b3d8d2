package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/interfaces/http/handlers"
)

// WebhookRouteConfig holds dependencies for inbound webhook routes.
type WebhookRouteConfig struct {
	IdentityHandler *handlers.IdentityWebhookHandler
	PaymentHandler  *handlers.PaymentWebhookHandler
}

// SetupWebhookRoutes configures webhook routes. Both endpoints authenticate
// by signature, never by session.
func SetupWebhookRoutes(engine *gin.Engine, cfg *WebhookRouteConfig) {
	webhooks := engine.Group("/webhooks")
	{
		webhooks.POST("/identity", cfg.IdentityHandler.Handle)
		webhooks.POST("/stripe", cfg.PaymentHandler.Handle)
	}
}
