package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/domain/user"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// paymentStatusPaid is the processor's settled state on a checkout session.
const paymentStatusPaid = "paid"

// HandleCheckoutCompletedUseCase turns a finished checkout session into a
// ledger credit. The session's metadata was stamped at initiation, so the
// purchase is self-describing; the gateway is only consulted for the settled
// amount and the paying customer.
type HandleCheckoutCompletedUseCase struct {
	userRepo user.Repository
	gateway  paymentgateway.PaymentGateway
	credit   *CreditPurchaseUseCase
	logger   logger.Interface
}

func NewHandleCheckoutCompletedUseCase(
	userRepo user.Repository,
	gateway paymentgateway.PaymentGateway,
	credit *CreditPurchaseUseCase,
	logger logger.Interface,
) *HandleCheckoutCompletedUseCase {
	return &HandleCheckoutCompletedUseCase{
		userRepo: userRepo,
		gateway:  gateway,
		credit:   credit,
		logger:   logger,
	}
}

func (uc *HandleCheckoutCompletedUseCase) Execute(ctx context.Context, session *paymentgateway.CheckoutSession) error {
	userID := session.Metadata[paymentgateway.MetaUserID]
	planID := session.Metadata[paymentgateway.MetaPlan]
	tokensRaw := session.Metadata[paymentgateway.MetaTokens]
	if userID == "" || planID == "" || tokensRaw == "" {
		return fmt.Errorf("checkout session %s is missing purchase metadata", session.ID)
	}

	if session.PaymentStatus != paymentStatusPaid {
		uc.logger.Warnw("checkout session not paid, skipping",
			"session_id", session.ID, "payment_status", session.PaymentStatus)
		return nil
	}

	if _, err := billing.LookupPlan(planID); err != nil {
		return fmt.Errorf("checkout session %s: %w", session.ID, err)
	}

	tokens, err := strconv.ParseInt(tokensRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("checkout session %s has malformed token count %q", session.ID, tokensRaw)
	}

	isSubscription, _ := strconv.ParseBool(session.Metadata[paymentgateway.MetaIsSubscription])

	amount := session.AmountTotal
	customerID := session.CustomerID
	paymentIntentID := session.PaymentIntentID

	if isSubscription {
		if session.SubscriptionID != "" {
			sub, err := uc.gateway.GetSubscription(ctx, session.SubscriptionID)
			if err != nil {
				return fmt.Errorf("failed to resolve subscription for session %s: %w", session.ID, err)
			}
			if sub.CustomerID != "" {
				customerID = sub.CustomerID
			}

			// Renewal invoices carry the subscription's metadata, not the
			// session's, so stamp it through before the first renewal fires.
			if err := uc.gateway.UpdateSubscriptionMetadata(ctx, session.SubscriptionID, map[string]string{
				paymentgateway.MetaUserID: userID,
				paymentgateway.MetaPlan:   planID,
				paymentgateway.MetaTokens: tokensRaw,
			}); err != nil {
				uc.logger.Errorw("failed to stamp subscription metadata",
					"subscription_id", session.SubscriptionID, "error", err)
			}
		}

		if customerID != "" {
			if err := uc.userRepo.SetStripeCustomerID(ctx, userID, customerID); err != nil {
				uc.logger.Errorw("failed to persist customer ID",
					"user_id", userID, "customer_id", customerID, "error", err)
			}
		}
	} else if paymentIntentID != "" {
		pi, err := uc.gateway.GetPaymentIntent(ctx, paymentIntentID)
		if err != nil {
			return fmt.Errorf("failed to resolve payment intent for session %s: %w", session.ID, err)
		}
		amount = pi.Amount
		if pi.CustomerID != "" {
			customerID = pi.CustomerID
		}
	}

	return uc.credit.Execute(ctx, CreditPurchaseCommand{
		UserID:          userID,
		EventType:       "checkout.session.completed",
		PlanID:          planID,
		AmountCents:     amount,
		Tokens:          tokens,
		SessionID:       session.ID,
		PaymentIntentID: paymentIntentID,
		IsSubscription:  isSubscription,
	})
}
