package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// HandlePaymentSucceededUseCase processes payment_intent.succeeded. When the
// intent references a checkout session it re-dispatches to the checkout
// handler; the session-level dedupe makes the double delivery harmless.
// Intents without a session reference are not ours to credit.
type HandlePaymentSucceededUseCase struct {
	gateway  paymentgateway.PaymentGateway
	checkout *HandleCheckoutCompletedUseCase
	logger   logger.Interface
}

func NewHandlePaymentSucceededUseCase(
	gateway paymentgateway.PaymentGateway,
	checkout *HandleCheckoutCompletedUseCase,
	logger logger.Interface,
) *HandlePaymentSucceededUseCase {
	return &HandlePaymentSucceededUseCase{
		gateway:  gateway,
		checkout: checkout,
		logger:   logger,
	}
}

func (uc *HandlePaymentSucceededUseCase) Execute(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	sessionID := metadata[paymentgateway.MetaSessionID]
	if sessionID == "" {
		uc.logger.Infow("payment intent has no session reference, ignoring",
			"payment_intent_id", paymentIntentID)
		return nil
	}

	session, err := uc.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to fetch session %s for payment intent %s: %w",
			sessionID, paymentIntentID, err)
	}

	return uc.checkout.Execute(ctx, session)
}
