package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/application/billing/usecases"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// maxWebhookBody caps what the payment processor can make us buffer. Stripe
// events run large (invoices carry every line item), so the cap must stay
// well above any real payload or truncation breaks signature verification.
const maxWebhookBody = int64(1 << 20)

// PaymentWebhookHandler receives payment processor events. As with identity
// events, only a bad signature earns a 400; processing failures are logged
// and answered with 200 because the processor's retry would hit the same
// deterministic failure.
type PaymentWebhookHandler struct {
	webhookSecret     string
	checkoutCompleted *usecases.HandleCheckoutCompletedUseCase
	paymentSucceeded  *usecases.HandlePaymentSucceededUseCase
	invoicePaid       *usecases.HandleInvoicePaidUseCase
	logger            logger.Interface
}

func NewPaymentWebhookHandler(
	webhookSecret string,
	checkoutCompleted *usecases.HandleCheckoutCompletedUseCase,
	paymentSucceeded *usecases.HandlePaymentSucceededUseCase,
	invoicePaid *usecases.HandleInvoicePaidUseCase,
	logger logger.Interface,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		webhookSecret:     webhookSecret,
		checkoutCompleted: checkoutCompleted,
		paymentSucceeded:  paymentSucceeded,
		invoicePaid:       invoicePaid,
		logger:            logger,
	}
}

// Handle handles POST /webhooks/stripe
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read payload")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Warnw("payment webhook signature rejected", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "signature verification failed")
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.logger.Errorw("checkout session payload malformed", "error", err)
			break
		}
		err = h.checkoutCompleted.Execute(ctx, checkoutSessionToDTO(&sess))

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			h.logger.Errorw("payment intent payload malformed", "error", err)
			break
		}
		err = h.paymentSucceeded.Execute(ctx, pi.ID, pi.Metadata)

	case "invoice.payment_succeeded", "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			h.logger.Errorw("invoice payload malformed", "error", err)
			break
		}
		cmd := usecases.InvoicePaidCommand{
			InvoiceID:   inv.ID,
			AmountCents: inv.AmountPaid,
		}
		if inv.Subscription != nil {
			cmd.SubscriptionID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			cmd.CustomerID = inv.Customer.ID
		}
		err = h.invoicePaid.Execute(ctx, cmd)

	default:
		h.logger.Infow("unhandled payment event type", "type", event.Type)
		err = nil
	}

	if err != nil {
		h.logger.Errorw("payment event processing failed",
			"type", event.Type, "event_id", event.ID, "error", err)
	}

	utils.SuccessResponse(c, http.StatusOK, "processed", nil)
}

func checkoutSessionToDTO(sess *stripe.CheckoutSession) *paymentgateway.CheckoutSession {
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
