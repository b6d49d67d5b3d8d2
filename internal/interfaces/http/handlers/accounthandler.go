package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/application/account/usecases"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// AccountHandler serves the dashboard overview and account deletion.
type AccountHandler struct {
	getDashboard  *usecases.GetDashboardUseCase
	deleteAccount *usecases.DeleteAccountUseCase
	logger        logger.Interface
}

func NewAccountHandler(
	getDashboard *usecases.GetDashboardUseCase,
	deleteAccount *usecases.DeleteAccountUseCase,
	logger logger.Interface,
) *AccountHandler {
	return &AccountHandler{
		getDashboard:  getDashboard,
		deleteAccount: deleteAccount,
		logger:        logger,
	}
}

// GetDashboard handles GET /account/dashboard
func (h *AccountHandler) GetDashboard(c *gin.Context) {
	userID := middleware.UserID(c)

	result, err := h.getDashboard.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to load dashboard", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"user": gin.H{
			"id":            result.UserID,
			"email":         result.Email,
			"billing_model": result.BillingModel,
		},
		"tokens": gin.H{
			"available": result.AvailableTokens,
			"used":      result.UsedTokens,
		},
		"api_key_masked": result.MaskedAPIKey,
	})
}

// Delete handles DELETE /account
func (h *AccountHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.deleteAccount.Execute(c.Request.Context(), userID); err != nil {
		h.logger.Errorw("account deletion failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "account deleted", nil)
}
