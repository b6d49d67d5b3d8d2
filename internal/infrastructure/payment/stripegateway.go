package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// StripeGateway implements the payment gateway port on the Stripe API.
type StripeGateway struct {
	api    *client.API
	logger logger.Interface
}

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string, logger logger.Interface) *StripeGateway {
	api := client.New(secretKey, nil)
	return &StripeGateway{
		api:    api,
		logger: logger,
	}
}

// CreateCheckoutSession opens a hosted checkout session. Plans are priced
// inline with price_data; there are no preconfigured price objects to drift
// out of sync with the catalog.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req paymentgateway.CreateCheckoutRequest) (*paymentgateway.CheckoutSession, error) {
	metadata := map[string]string{
		paymentgateway.MetaUserID:         req.UserID,
		paymentgateway.MetaPlan:           req.Plan.ID,
		paymentgateway.MetaTokens:         strconv.FormatInt(req.Plan.Tokens, 10),
		paymentgateway.MetaIsSubscription: strconv.FormatBool(req.Plan.IsSubscription),
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		UnitAmount: stripe.Int64(req.Plan.PriceCents),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(req.Plan.Name),
		},
	}

	mode := stripe.CheckoutSessionModePayment
	if req.Plan.IsSubscription {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.Metadata = metadata
	if req.Plan.IsSubscription {
		// Renewal invoices reference the subscription, not the session, so the
		// same metadata rides on both.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
	} else {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		}
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Errorw("failed to create checkout session", "user_id", req.UserID, "plan", req.Plan.ID, "error", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Infow("checkout session created", "session_id", sess.ID, "user_id", req.UserID, "plan", req.Plan.ID)
	return sessionToDTO(sess), nil
}

// GetCheckoutSession fetches a session by ID.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*paymentgateway.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session %s: %w", sessionID, err)
	}
	return sessionToDTO(sess), nil
}

// GetPaymentIntent fetches a payment intent by ID.
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*paymentgateway.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent %s: %w", paymentIntentID, err)
	}

	dto := &paymentgateway.PaymentIntent{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Metadata: pi.Metadata,
	}
	if pi.Customer != nil {
		dto.CustomerID = pi.Customer.ID
	}
	return dto, nil
}

// GetSubscription fetches a subscription by ID.
func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription %s: %w", subscriptionID, err)
	}
	return subscriptionToDTO(sub), nil
}

// UpdateSubscriptionMetadata stamps purchase metadata onto a subscription.
func (g *StripeGateway) UpdateSubscriptionMetadata(ctx context.Context, subscriptionID string, metadata map[string]string) error {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.Metadata = metadata

	if _, err := g.api.Subscriptions.Update(subscriptionID, params); err != nil {
		g.logger.Errorw("failed to update subscription metadata", "subscription_id", subscriptionID, "error", err)
		return fmt.Errorf("failed to update subscription metadata: %w", err)
	}
	return nil
}

func sessionToDTO(sess *stripe.CheckoutSession) *paymentgateway.CheckoutSession {
	dto := &paymentgateway.CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Metadata:      sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		dto.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.Subscription != nil {
		dto.SubscriptionID = sess.Subscription.ID
	}
	if sess.Customer != nil {
		dto.CustomerID = sess.Customer.ID
	}
	return dto
}

func subscriptionToDTO(sub *stripe.Subscription) *paymentgateway.Subscription {
	dto := &paymentgateway.Subscription{
		ID:       sub.ID,
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		dto.CustomerID = sub.Customer.ID
	}
	return dto
}
