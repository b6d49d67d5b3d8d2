// Package http wires the full request path: repositories, use cases,
// handlers, and routes. Dependencies are passed explicitly; nothing below
// this package reaches for a global.
package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	accountUC "github.com/meterly-io/meterly/internal/application/account/usecases"
	apikeyUC "github.com/meterly-io/meterly/internal/application/apikey/usecases"
	billingUC "github.com/meterly-io/meterly/internal/application/billing/usecases"
	identityUC "github.com/meterly-io/meterly/internal/application/identity/usecases"
	"github.com/meterly-io/meterly/internal/infrastructure/auth"
	"github.com/meterly-io/meterly/internal/infrastructure/config"
	"github.com/meterly-io/meterly/internal/infrastructure/identity"
	"github.com/meterly-io/meterly/internal/infrastructure/payment"
	"github.com/meterly-io/meterly/internal/infrastructure/repository"
	"github.com/meterly-io/meterly/internal/interfaces/http/handlers"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
	"github.com/meterly-io/meterly/internal/interfaces/http/routes"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// rotation and deletion share one budget: 10 requests per minute per user.
const (
	sensitiveOpLimit  = 10
	sensitiveOpWindow = time.Minute
)

// NewRouter builds the HTTP engine with all routes attached.
func NewRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) (*gin.Engine, error) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db, log)
	ledgerRepo := repository.NewTokenLedgerRepository(db, log)
	keyRepo := repository.NewAPIKeyRepository(db, log)
	purchaseRepo := repository.NewPurchaseEventRepository(db, log)

	// Infrastructure services
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	keyGenerator := auth.NewKeyGenerator()
	keyCipher, err := auth.NewKeyCipher(cfg.Auth.KeyEncryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to build key cipher: %w", err)
	}
	identityVerifier, err := identity.NewSvixVerifier(cfg.Identity.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity verifier: %w", err)
	}
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, log)

	// Use cases
	provisionKey := apikeyUC.NewProvisionKeyUseCase(keyRepo, keyGenerator, keyCipher, log)
	rotateKey := apikeyUC.NewRotateKeyUseCase(keyRepo, keyGenerator, keyCipher, log)
	getKey := apikeyUC.NewGetKeyUseCase(keyRepo, keyCipher, log)
	verifyKey := apikeyUC.NewVerifyKeyUseCase(keyRepo, keyGenerator)

	userCreated := identityUC.NewSyncUserCreatedUseCase(userRepo, ledgerRepo, provisionKey, log)
	userUpdated := identityUC.NewSyncUserUpdatedUseCase(userRepo, log)
	userDeleted := identityUC.NewSyncUserDeletedUseCase(userRepo, log)

	creditPurchase := billingUC.NewCreditPurchaseUseCase(userRepo, ledgerRepo, purchaseRepo, log)
	checkoutCompleted := billingUC.NewHandleCheckoutCompletedUseCase(userRepo, gateway, creditPurchase, log)
	paymentSucceeded := billingUC.NewHandlePaymentSucceededUseCase(gateway, checkoutCompleted, log)
	invoicePaid := billingUC.NewHandleInvoicePaidUseCase(userRepo, gateway, creditPurchase, log)
	initiateCheckout := billingUC.NewInitiateCheckoutUseCase(gateway, billingUC.CheckoutConfig{
		SuccessURL: cfg.Server.DashboardURL + "?checkout=success",
		CancelURL:  cfg.Server.DashboardURL + "?checkout=cancelled",
	}, log)

	getDashboard := accountUC.NewGetDashboardUseCase(userRepo, ledgerRepo, getKey, log)
	getUsage := accountUC.NewGetUsageUseCase(ledgerRepo)
	deleteAccount := accountUC.NewDeleteAccountUseCase(userRepo, log)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	apiKeyMiddleware := middleware.NewAPIKeyAuthMiddleware(verifyKey, log)
	rateLimiter := middleware.NewRateLimiter(redisClient, sensitiveOpLimit, sensitiveOpWindow)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler()
	engine.GET("/health", healthHandler.Check)

	routes.SetupWebhookRoutes(engine, &routes.WebhookRouteConfig{
		IdentityHandler: handlers.NewIdentityWebhookHandler(identityVerifier, userCreated, userUpdated, userDeleted, log),
		PaymentHandler:  handlers.NewPaymentWebhookHandler(cfg.Stripe.WebhookSecret, checkoutCompleted, paymentSucceeded, invoicePaid, log),
	})
	routes.SetupBillingRoutes(engine, &routes.BillingRouteConfig{
		CheckoutHandler: handlers.NewCheckoutHandler(initiateCheckout, log),
		AuthMiddleware:  authMiddleware,
	})
	routes.SetupAccountRoutes(engine, &routes.AccountRouteConfig{
		AccountHandler: handlers.NewAccountHandler(getDashboard, deleteAccount, log),
		APIKeyHandler:  handlers.NewAPIKeyHandler(rotateKey, getKey, log),
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
	})
	routes.SetupUsageRoutes(engine, &routes.UsageRouteConfig{
		UsageHandler:     handlers.NewUsageHandler(getUsage, log),
		APIKeyMiddleware: apiKeyMiddleware,
	})

	return engine, nil
}
