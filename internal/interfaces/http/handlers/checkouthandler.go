package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/application/billing/usecases"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// CheckoutHandler starts purchases for the authenticated dashboard user.
type CheckoutHandler struct {
	initiateCheckout *usecases.InitiateCheckoutUseCase
	logger           logger.Interface
}

func NewCheckoutHandler(initiateCheckout *usecases.InitiateCheckoutUseCase, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{
		initiateCheckout: initiateCheckout,
		logger:           logger,
	}
}

type checkoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// Create handles POST /billing/checkout
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "plan is required")
		return
	}

	result, err := h.initiateCheckout.Execute(c.Request.Context(), usecases.InitiateCheckoutCommand{
		UserID: middleware.UserID(c),
		PlanID: req.Plan,
	})
	if err != nil {
		h.logger.Errorw("checkout initiation failed", "plan", req.Plan, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"url": result.URL})
}
