package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/application/apikey/usecases"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// APIKeyHandler manages the authenticated user's API credential.
type APIKeyHandler struct {
	rotateKey *usecases.RotateKeyUseCase
	getKey    *usecases.GetKeyUseCase
	logger    logger.Interface
}

func NewAPIKeyHandler(
	rotateKey *usecases.RotateKeyUseCase,
	getKey *usecases.GetKeyUseCase,
	logger logger.Interface,
) *APIKeyHandler {
	return &APIKeyHandler{
		rotateKey: rotateKey,
		getKey:    getKey,
		logger:    logger,
	}
}

// Rotate handles POST /account/api-key/rotate. The plaintext in the response
// is the only time the new key ever leaves the service.
func (h *APIKeyHandler) Rotate(c *gin.Context) {
	userID := middleware.UserID(c)

	result, err := h.rotateKey.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("key rotation failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"api_key": result.APIKey})
}

// Get handles GET /account/api-key
func (h *APIKeyHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	result, err := h.getKey.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("key lookup failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if !result.Available {
		utils.SuccessResponse(c, http.StatusOK, "no key available", gin.H{"api_key": nil})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"api_key": result.APIKey})
}
