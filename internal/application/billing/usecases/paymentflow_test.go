package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterly-io/meterly/internal/application/billing/paymentgateway"
	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/biztime"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type fakeUserRepo struct {
	byID map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*user.User)}
}

func (r *fakeUserRepo) add(t *testing.T, userID, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(userID, email)
	require.NoError(t, err)
	r.byID[userID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.byID[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*user.User, error) {
	return r.byID[userID], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	for _, u := range r.byID {
		if u.StripeCustomerID() != nil && *u.StripeCustomerID() == customerID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateEmail(ctx context.Context, userID, email string) error {
	u, ok := r.byID[userID]
	if !ok {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	return u.ChangeEmail(email)
}

func (r *fakeUserRepo) ReassignID(ctx context.Context, oldID, newID string) error {
	return fmt.Errorf("not used in billing tests")
}

func (r *fakeUserRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	u, ok := r.byID[userID]
	if !ok {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	return u.AttachStripeCustomer(customerID)
}

func (r *fakeUserRepo) SetBillingModel(ctx context.Context, userID string, model user.BillingModel) error {
	u, ok := r.byID[userID]
	if !ok {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	if model == user.BillingModelPro {
		u.UpgradeToPro()
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	delete(r.byID, userID)
	return nil
}

type fakeLedgerRepo struct {
	available map[string]int64
	creditErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{available: make(map[string]int64)}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, l *ledger.TokenLedger) error {
	if _, ok := r.available[l.UserID()]; ok {
		return apperrors.NewConflictError("token ledger already exists", l.UserID())
	}
	r.available[l.UserID()] = l.Available()
	return nil
}

func (r *fakeLedgerRepo) GetByUserID(ctx context.Context, userID string) (*ledger.TokenLedger, error) {
	avail, ok := r.available[userID]
	if !ok {
		return nil, nil
	}
	return ledger.ReconstructTokenLedger(userID, avail, 0, biztime.NowUTC()), nil
}

func (r *fakeLedgerRepo) Credit(ctx context.Context, userID string, tokens int64) error {
	if r.creditErr != nil {
		return r.creditErr
	}
	r.available[userID] += tokens
	return nil
}

type fakePurchaseRepo struct {
	events   []*billing.PurchaseEvent
	sessions map[string]bool
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{sessions: make(map[string]bool)}
}

func (r *fakePurchaseRepo) Create(ctx context.Context, evt *billing.PurchaseEvent) error {
	if evt.SessionID() != nil {
		if r.sessions[*evt.SessionID()] {
			return apperrors.NewConflictError("purchase event already recorded", evt.ID())
		}
		r.sessions[*evt.SessionID()] = true
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *fakePurchaseRepo) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	return r.sessions[sessionID], nil
}

func (r *fakePurchaseRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*billing.PurchaseEvent, error) {
	var out []*billing.PurchaseEvent
	for _, evt := range r.events {
		if evt.UserID() == userID {
			out = append(out, evt)
		}
	}
	return out, nil
}

type fakeGateway struct {
	sessions      map[string]*paymentgateway.CheckoutSession
	intents       map[string]*paymentgateway.PaymentIntent
	subscriptions map[string]*paymentgateway.Subscription
	stamped       map[string]map[string]string
	checkoutURL   string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions:      make(map[string]*paymentgateway.CheckoutSession),
		intents:       make(map[string]*paymentgateway.PaymentIntent),
		subscriptions: make(map[string]*paymentgateway.Subscription),
		stamped:       make(map[string]map[string]string),
		checkoutURL:   "https://checkout.example.com/cs_new",
	}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req paymentgateway.CreateCheckoutRequest) (*paymentgateway.CheckoutSession, error) {
	return &paymentgateway.CheckoutSession{ID: "cs_new", URL: g.checkoutURL}, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*paymentgateway.CheckoutSession, error) {
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %s", sessionID)
	}
	return sess, nil
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*paymentgateway.PaymentIntent, error) {
	pi, ok := g.intents[paymentIntentID]
	if !ok {
		return nil, fmt.Errorf("no such payment intent %s", paymentIntentID)
	}
	return pi, nil
}

func (g *fakeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.Subscription, error) {
	sub, ok := g.subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("no such subscription %s", subscriptionID)
	}
	return sub, nil
}

func (g *fakeGateway) UpdateSubscriptionMetadata(ctx context.Context, subscriptionID string, metadata map[string]string) error {
	g.stamped[subscriptionID] = metadata
	if sub, ok := g.subscriptions[subscriptionID]; ok {
		sub.Metadata = metadata
	}
	return nil
}

func silentLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type billingFixture struct {
	users     *fakeUserRepo
	ledgers   *fakeLedgerRepo
	purchases *fakePurchaseRepo
	gateway   *fakeGateway
	checkout  *HandleCheckoutCompletedUseCase
	payment   *HandlePaymentSucceededUseCase
	invoice   *HandleInvoicePaidUseCase
}

func newBillingFixture() *billingFixture {
	users := newFakeUserRepo()
	ledgers := newFakeLedgerRepo()
	purchases := newFakePurchaseRepo()
	gateway := newFakeGateway()

	credit := NewCreditPurchaseUseCase(users, ledgers, purchases, silentLogger())
	checkout := NewHandleCheckoutCompletedUseCase(users, gateway, credit, silentLogger())

	return &billingFixture{
		users:     users,
		ledgers:   ledgers,
		purchases: purchases,
		gateway:   gateway,
		checkout:  checkout,
		payment:   NewHandlePaymentSucceededUseCase(gateway, checkout, silentLogger()),
		invoice:   NewHandleInvoicePaidUseCase(users, gateway, credit, silentLogger()),
	}
}

func oneTimeSession(sessionID, userID, planID string, tokens int64) *paymentgateway.CheckoutSession {
	return &paymentgateway.CheckoutSession{
		ID:              sessionID,
		PaymentStatus:   paymentStatusPaid,
		PaymentIntentID: "pi_" + sessionID,
		Metadata: map[string]string{
			paymentgateway.MetaUserID:         userID,
			paymentgateway.MetaPlan:           planID,
			paymentgateway.MetaTokens:         fmt.Sprintf("%d", tokens),
			paymentgateway.MetaIsSubscription: "false",
		},
	}
}

func TestCheckoutCompleted_OneTimePurchase(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "buyer@example.com")

	sess := oneTimeSession("cs_1", "user_1", billing.PlanValuePack, 2500)
	f.gateway.intents["pi_cs_1"] = &paymentgateway.PaymentIntent{
		ID: "pi_cs_1", Amount: 2000, CustomerID: "cus_1",
	}

	require.NoError(t, f.checkout.Execute(ctx, sess))

	assert.Equal(t, int64(2500), f.ledgers.available["user_1"])
	assert.Equal(t, user.BillingModelPayPerToken, f.users.byID["user_1"].BillingModel())

	require.Len(t, f.purchases.events, 1)
	evt := f.purchases.events[0]
	assert.Equal(t, billing.PlanValuePack, evt.Plan())
	assert.Equal(t, int64(2000), evt.AmountCents())
	require.NotNil(t, evt.SessionID())
	assert.Equal(t, "cs_1", *evt.SessionID())
}

func TestCheckoutCompleted_SubscriptionUpgradesAndStamps(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "pro@example.com")
	f.ledgers.available["user_1"] = 100

	f.gateway.subscriptions["sub_1"] = &paymentgateway.Subscription{
		ID: "sub_1", CustomerID: "cus_9",
	}

	sess := &paymentgateway.CheckoutSession{
		ID:             "cs_sub",
		PaymentStatus:  paymentStatusPaid,
		SubscriptionID: "sub_1",
		AmountTotal:    1900,
		Metadata: map[string]string{
			paymentgateway.MetaUserID:         "user_1",
			paymentgateway.MetaPlan:           billing.PlanPro,
			paymentgateway.MetaTokens:         "2500",
			paymentgateway.MetaIsSubscription: "true",
		},
	}

	require.NoError(t, f.checkout.Execute(ctx, sess))

	assert.Equal(t, int64(2600), f.ledgers.available["user_1"])
	assert.Equal(t, user.BillingModelPro, f.users.byID["user_1"].BillingModel())

	owner := f.users.byID["user_1"]
	require.NotNil(t, owner.StripeCustomerID())
	assert.Equal(t, "cus_9", *owner.StripeCustomerID())

	stamped := f.gateway.stamped["sub_1"]
	require.NotNil(t, stamped)
	assert.Equal(t, "user_1", stamped[paymentgateway.MetaUserID])
	assert.Equal(t, "2500", stamped[paymentgateway.MetaTokens])
}

func TestCheckoutCompleted_DuplicateSessionCreditsOnce(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "dup@example.com")

	sess := oneTimeSession("cs_dup", "user_1", billing.PlanBasePack, 1000)
	f.gateway.intents["pi_cs_dup"] = &paymentgateway.PaymentIntent{ID: "pi_cs_dup", Amount: 1000}

	require.NoError(t, f.checkout.Execute(ctx, sess))
	require.NoError(t, f.checkout.Execute(ctx, sess))

	assert.Equal(t, int64(1000), f.ledgers.available["user_1"])
	assert.Len(t, f.purchases.events, 1)
}

func TestCheckoutCompleted_UnpaidSessionSkipped(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "unpaid@example.com")

	sess := oneTimeSession("cs_unpaid", "user_1", billing.PlanStarterPack, 500)
	sess.PaymentStatus = "unpaid"

	require.NoError(t, f.checkout.Execute(ctx, sess))
	assert.Zero(t, f.ledgers.available["user_1"])
	assert.Empty(t, f.purchases.events)
}

func TestCheckoutCompleted_MissingMetadataFails(t *testing.T) {
	f := newBillingFixture()
	sess := &paymentgateway.CheckoutSession{
		ID:            "cs_bare",
		PaymentStatus: paymentStatusPaid,
		Metadata:      map[string]string{},
	}
	assert.Error(t, f.checkout.Execute(context.Background(), sess))
}

func TestCheckoutCompleted_UnknownPlanFails(t *testing.T) {
	f := newBillingFixture()
	f.users.add(t, "user_1", "bad@example.com")
	sess := oneTimeSession("cs_bad", "user_1", "mega-pack", 99999)
	assert.Error(t, f.checkout.Execute(context.Background(), sess))
	assert.Zero(t, f.ledgers.available["user_1"])
}

func TestPaymentSucceeded_RedispatchesViaSession(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "redispatch@example.com")

	sess := oneTimeSession("cs_redisp", "user_1", billing.PlanHighRollerPack, 7500)
	f.gateway.sessions["cs_redisp"] = sess
	f.gateway.intents["pi_cs_redisp"] = &paymentgateway.PaymentIntent{ID: "pi_cs_redisp", Amount: 5000}

	err := f.payment.Execute(ctx, "pi_cs_redisp", map[string]string{
		paymentgateway.MetaSessionID: "cs_redisp",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), f.ledgers.available["user_1"])

	// The session handler already ran; the re-dispatch must not double credit.
	require.NoError(t, f.checkout.Execute(ctx, sess))
	assert.Equal(t, int64(7500), f.ledgers.available["user_1"])
}

func TestPaymentSucceeded_NoSessionIgnored(t *testing.T) {
	f := newBillingFixture()
	err := f.payment.Execute(context.Background(), "pi_orphan", map[string]string{})
	assert.NoError(t, err)
}

func TestInvoicePaid_MetadataFastPath(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	f.users.add(t, "user_1", "renew@example.com")
	f.ledgers.available["user_1"] = 50

	f.gateway.subscriptions["sub_1"] = &paymentgateway.Subscription{
		ID:         "sub_1",
		CustomerID: "cus_1",
		Metadata: map[string]string{
			paymentgateway.MetaUserID: "user_1",
			paymentgateway.MetaPlan:   billing.PlanPro,
			paymentgateway.MetaTokens: "2500",
		},
	}

	err := f.invoice.Execute(ctx, InvoicePaidCommand{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
		AmountCents:    1900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2550), f.ledgers.available["user_1"])
	assert.Equal(t, user.BillingModelPro, f.users.byID["user_1"].BillingModel())
}

func TestInvoicePaid_CustomerSlowPath(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	owner := f.users.add(t, "user_1", "legacy@example.com")
	require.NoError(t, owner.AttachStripeCustomer("cus_legacy"))

	f.gateway.subscriptions["sub_legacy"] = &paymentgateway.Subscription{
		ID:         "sub_legacy",
		CustomerID: "cus_legacy",
	}

	err := f.invoice.Execute(ctx, InvoicePaidCommand{
		InvoiceID:      "in_legacy",
		SubscriptionID: "sub_legacy",
		AmountCents:    1900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), f.ledgers.available["user_1"])
}

func TestInvoicePaid_UnmatchedCustomerDropped(t *testing.T) {
	f := newBillingFixture()
	f.gateway.subscriptions["sub_x"] = &paymentgateway.Subscription{
		ID:         "sub_x",
		CustomerID: "cus_unknown",
	}

	err := f.invoice.Execute(context.Background(), InvoicePaidCommand{
		InvoiceID:      "in_x",
		SubscriptionID: "sub_x",
	})
	assert.NoError(t, err)
	assert.Empty(t, f.ledgers.available)
}

func TestInvoicePaid_RenewalAbortsWhenLedgerUnavailable(t *testing.T) {
	f := newBillingFixture()
	f.users.add(t, "user_1", "down@example.com")
	f.ledgers.creditErr = fmt.Errorf("store unavailable")

	f.gateway.subscriptions["sub_1"] = &paymentgateway.Subscription{
		ID: "sub_1",
		Metadata: map[string]string{
			paymentgateway.MetaUserID: "user_1",
			paymentgateway.MetaPlan:   billing.PlanPro,
			paymentgateway.MetaTokens: "2500",
		},
	}

	err := f.invoice.Execute(context.Background(), InvoicePaidCommand{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
	})
	assert.Error(t, err)
	assert.Empty(t, f.purchases.events)
}

func TestInitiateCheckout(t *testing.T) {
	gateway := newFakeGateway()
	uc := NewInitiateCheckoutUseCase(gateway, CheckoutConfig{
		SuccessURL: "https://app.example.com/dashboard?status=success",
		CancelURL:  "https://app.example.com/dashboard?status=cancelled",
	}, silentLogger())

	t.Run("known plan returns URL", func(t *testing.T) {
		result, err := uc.Execute(context.Background(), InitiateCheckoutCommand{
			UserID: "user_1",
			PlanID: billing.PlanStarterPack,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example.com/cs_new", result.URL)
	})

	t.Run("unknown plan is a hard error", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), InitiateCheckoutCommand{
			UserID: "user_1",
			PlanID: "mystery-pack",
		})
		assert.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
	})
}
