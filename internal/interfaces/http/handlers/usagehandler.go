package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/application/account/usecases"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// UsageHandler serves the programmatic balance endpoint behind API key auth.
type UsageHandler struct {
	getUsage *usecases.GetUsageUseCase
	logger   logger.Interface
}

func NewUsageHandler(getUsage *usecases.GetUsageUseCase, logger logger.Interface) *UsageHandler {
	return &UsageHandler{
		getUsage: getUsage,
		logger:   logger,
	}
}

// Get handles GET /api/v1/usage
func (h *UsageHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	result, err := h.getUsage.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("usage lookup failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"available_tokens": result.AvailableTokens,
		"used_tokens":      result.UsedTokens,
	})
}
