package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// KeyVerifier resolves presented API key material to its owning user.
type KeyVerifier interface {
	Execute(ctx context.Context, plaintext string) (string, error)
}

// APIKeyAuthMiddleware authenticates programmatic clients by API key, taken
// from the Authorization bearer value or the X-API-Key header.
type APIKeyAuthMiddleware struct {
	verifier KeyVerifier
	logger   logger.Interface
}

func NewAPIKeyAuthMiddleware(verifier KeyVerifier, logger logger.Interface) *APIKeyAuthMiddleware {
	return &APIKeyAuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

func (m *APIKeyAuthMiddleware) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			authHeader := c.GetHeader("Authorization")
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				key = parts[1]
			}
		}
		if key == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing API key")
			c.Abort()
			return
		}

		userID, err := m.verifier.Execute(c.Request.Context(), key)
		if err != nil {
			m.logger.Warnw("API key rejected", "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}
