package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/domain/billing"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type InitiateCheckoutCommand struct {
	UserID string
	PlanID string
}

type InitiateCheckoutResult struct {
	URL string
}

// CheckoutConfig holds the browser return addresses for the hosted page.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

// InitiateCheckoutUseCase opens a hosted checkout session for a catalog plan
// and hands the URL back to the boundary.
type InitiateCheckoutUseCase struct {
	gateway paymentgateway.PaymentGateway
	config  CheckoutConfig
	logger  logger.Interface
}

func NewInitiateCheckoutUseCase(
	gateway paymentgateway.PaymentGateway,
	config CheckoutConfig,
	logger logger.Interface,
) *InitiateCheckoutUseCase {
	return &InitiateCheckoutUseCase{
		gateway: gateway,
		config:  config,
		logger:  logger,
	}
}

func (uc *InitiateCheckoutUseCase) Execute(ctx context.Context, cmd InitiateCheckoutCommand) (*InitiateCheckoutResult, error) {
	plan, err := billing.LookupPlan(cmd.PlanID)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown plan", cmd.PlanID)
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, paymentgateway.CreateCheckoutRequest{
		UserID:     cmd.UserID,
		Plan:       plan,
		SuccessURL: uc.config.SuccessURL,
		CancelURL:  uc.config.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initiate checkout: %w", err)
	}

	uc.logger.Infow("checkout initiated", "user_id", cmd.UserID, "plan", cmd.PlanID)
	return &InitiateCheckoutResult{URL: session.URL}, nil
}
