package paymentgateway

import (
	"context"

	"github.com/meterly-io/meterly/internal/domain/billing"
)

// Metadata keys stamped onto checkout sessions and subscriptions so webhook
// handlers can resolve the purchase without a second lookup.
const (
	MetaUserID         = "userId"
	MetaPlan           = "plan"
	MetaTokens         = "tokens"
	MetaIsSubscription = "isSubscription"
	MetaSessionID      = "session_id"
)

// PaymentGateway defines the payment processor integration used by the
// billing use cases.
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted checkout page for the given plan
	// and returns its URL.
	CreateCheckoutSession(ctx context.Context, req CreateCheckoutRequest) (*CheckoutSession, error)
	// GetCheckoutSession fetches a session by ID with its metadata.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// GetPaymentIntent fetches a payment intent to resolve amount and customer.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
	// GetSubscription fetches a subscription to resolve customer and metadata.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	// UpdateSubscriptionMetadata stamps purchase metadata onto a subscription
	// so renewal invoices can be attributed without a customer lookup.
	UpdateSubscriptionMetadata(ctx context.Context, subscriptionID string, metadata map[string]string) error
}

// CreateCheckoutRequest describes the purchase being initiated.
type CreateCheckoutRequest struct {
	UserID     string
	Plan       billing.Plan
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the gateway's view of a hosted checkout session.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	SubscriptionID  string
	CustomerID      string
	AmountTotal     int64
	Metadata        map[string]string
}

// PaymentIntent carries the settled amount and paying customer.
type PaymentIntent struct {
	ID         string
	Amount     int64
	CustomerID string
	Metadata   map[string]string
}

// Subscription carries the recurring purchase's customer and metadata.
type Subscription struct {
	ID         string
	CustomerID string
	Metadata   map[string]string
}
