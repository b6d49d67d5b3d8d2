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

// InvoicePaidCommand carries the invoice fields the webhook extracts.
type InvoicePaidCommand struct {
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
	AmountCents    int64
}

// HandleInvoicePaidUseCase credits subscription renewals. Subscriptions
// created after checkout carry purchase metadata (fast path); older ones are
// attributed through the stored customer ID (slow path). An invoice that
// matches neither is logged and dropped rather than guessed at.
type HandleInvoicePaidUseCase struct {
	userRepo user.Repository
	gateway  paymentgateway.PaymentGateway
	credit   *CreditPurchaseUseCase
	logger   logger.Interface
}

func NewHandleInvoicePaidUseCase(
	userRepo user.Repository,
	gateway paymentgateway.PaymentGateway,
	credit *CreditPurchaseUseCase,
	logger logger.Interface,
) *HandleInvoicePaidUseCase {
	return &HandleInvoicePaidUseCase{
		userRepo: userRepo,
		gateway:  gateway,
		credit:   credit,
		logger:   logger,
	}
}

func (uc *HandleInvoicePaidUseCase) Execute(ctx context.Context, cmd InvoicePaidCommand) error {
	if cmd.SubscriptionID == "" {
		uc.logger.Infow("invoice without subscription, ignoring", "invoice_id", cmd.InvoiceID)
		return nil
	}

	sub, err := uc.gateway.GetSubscription(ctx, cmd.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to resolve subscription %s: %w", cmd.SubscriptionID, err)
	}

	userID := sub.Metadata[paymentgateway.MetaUserID]
	planID := sub.Metadata[paymentgateway.MetaPlan]
	tokens, _ := strconv.ParseInt(sub.Metadata[paymentgateway.MetaTokens], 10, 64)

	if userID == "" {
		customerID := sub.CustomerID
		if customerID == "" {
			customerID = cmd.CustomerID
		}
		if customerID == "" {
			uc.logger.Warnw("invoice has no customer to attribute, dropping",
				"invoice_id", cmd.InvoiceID, "subscription_id", cmd.SubscriptionID)
			return nil
		}

		owner, err := uc.userRepo.GetByStripeCustomerID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to look up customer %s: %w", customerID, err)
		}
		if owner == nil {
			uc.logger.Warnw("invoice customer matches no user, dropping",
				"invoice_id", cmd.InvoiceID, "customer_id", customerID)
			return nil
		}
		userID = owner.ID()
	}

	if planID == "" {
		planID = billing.PlanPro
	}
	plan, err := billing.LookupPlan(planID)
	if err != nil {
		return fmt.Errorf("invoice %s: %w", cmd.InvoiceID, err)
	}
	if tokens <= 0 {
		tokens = plan.Tokens
	}

	return uc.credit.Execute(ctx, CreditPurchaseCommand{
		UserID:         userID,
		EventType:      "invoice.payment_succeeded",
		PlanID:         planID,
		AmountCents:    cmd.AmountCents,
		Tokens:         tokens,
		IsSubscription: true,
	})
}
