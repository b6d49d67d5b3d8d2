package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/application/billing/usecases"
	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/interfaces/http/middleware"
)

type stubGateway struct {
	lastRequest paymentgateway.CreateCheckoutRequest
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, req paymentgateway.CreateCheckoutRequest) (*paymentgateway.CheckoutSession, error) {
	g.lastRequest = req
	return &paymentgateway.CheckoutSession{ID: "cs_test", URL: "https://pay.example.com/cs_test"}, nil
}

func (g *stubGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*paymentgateway.CheckoutSession, error) {
	return nil, nil
}

func (g *stubGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*paymentgateway.PaymentIntent, error) {
	return nil, nil
}

func (g *stubGateway) GetSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.Subscription, error) {
	return nil, nil
}

func (g *stubGateway) UpdateSubscriptionMetadata(ctx context.Context, subscriptionID string, metadata map[string]string) error {
	return nil
}

func newCheckoutEngine(t *testing.T, gateway *stubGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := usecases.NewInitiateCheckoutUseCase(gateway, usecases.CheckoutConfig{
		SuccessURL: "https://app.example.com/dashboard?checkout=success",
		CancelURL:  "https://app.example.com/dashboard?checkout=cancelled",
	}, testLogger())
	handler := NewCheckoutHandler(uc, testLogger())

	engine := gin.New()
	engine.POST("/billing/checkout", func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "user_1")
	}, handler.Create)
	return engine
}

func postCheckout(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/billing/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCheckoutHandler_ReturnsURL(t *testing.T) {
	gateway := &stubGateway{}
	engine := newCheckoutEngine(t, gateway)

	w := postCheckout(engine, `{"plan": "value-pack"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://pay.example.com/cs_test", resp.Data.URL)

	assert.Equal(t, "user_1", gateway.lastRequest.UserID)
	assert.Equal(t, billing.PlanValuePack, gateway.lastRequest.Plan.ID)
	assert.Equal(t, int64(2500), gateway.lastRequest.Plan.Tokens)
}

func TestCheckoutHandler_UnknownPlanIsRejected(t *testing.T) {
	engine := newCheckoutEngine(t, &stubGateway{})
	w := postCheckout(engine, `{"plan": "mystery-pack"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_MissingPlanIsRejected(t *testing.T) {
	engine := newCheckoutEngine(t, &stubGateway{})
	w := postCheckout(engine, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
