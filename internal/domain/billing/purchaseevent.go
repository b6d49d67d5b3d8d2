package billing

import (
	"fmt"
	"time"

	"github.com/meterly-io/meterly/internal/shared/biztime"
	"github.com/meterly-io/meterly/internal/shared/id"
)

// Purchase event statuses.
const (
	PurchaseStatusCompleted = "completed"
	PurchaseStatusPending   = "pending"
)

// PurchaseEvent is an append-only audit record for a successful payment
// webhook. It is never updated or deleted, and a failed write never rolls
// back the ledger credit it describes.
type PurchaseEvent struct {
	id              string
	userID          string
	eventType       string
	plan            string
	amountCents     int64
	tokens          int64
	sessionID       *string
	paymentIntentID *string
	status          string
	createdAt       time.Time
}

// NewPurchaseEvent creates an audit record. sessionID and paymentIntentID may
// be empty; renewal invoices carry no checkout session.
func NewPurchaseEvent(userID, eventType, plan string, amountCents, tokens int64, sessionID, paymentIntentID, status string) (*PurchaseEvent, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if plan == "" {
		return nil, fmt.Errorf("plan is required")
	}
	eventID, err := id.NewPurchaseEventID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event ID: %w", err)
	}
	if status == "" {
		status = PurchaseStatusCompleted
	}

	evt := &PurchaseEvent{
		id:          eventID,
		userID:      userID,
		eventType:   eventType,
		plan:        plan,
		amountCents: amountCents,
		tokens:      tokens,
		status:      status,
		createdAt:   biztime.NowUTC(),
	}
	if sessionID != "" {
		evt.sessionID = &sessionID
	}
	if paymentIntentID != "" {
		evt.paymentIntentID = &paymentIntentID
	}
	return evt, nil
}

// ReconstructPurchaseEvent rebuilds an audit record from persisted state.
func ReconstructPurchaseEvent(eventID, userID, eventType, plan string, amountCents, tokens int64, sessionID, paymentIntentID *string, status string, createdAt time.Time) *PurchaseEvent {
	return &PurchaseEvent{
		id:              eventID,
		userID:          userID,
		eventType:       eventType,
		plan:            plan,
		amountCents:     amountCents,
		tokens:          tokens,
		sessionID:       sessionID,
		paymentIntentID: paymentIntentID,
		status:          status,
		createdAt:       createdAt,
	}
}

func (e *PurchaseEvent) ID() string               { return e.id }
func (e *PurchaseEvent) UserID() string           { return e.userID }
func (e *PurchaseEvent) EventType() string        { return e.eventType }
func (e *PurchaseEvent) Plan() string             { return e.plan }
func (e *PurchaseEvent) AmountCents() int64       { return e.amountCents }
func (e *PurchaseEvent) Tokens() int64            { return e.tokens }
func (e *PurchaseEvent) SessionID() *string       { return e.sessionID }
func (e *PurchaseEvent) PaymentIntentID() *string { return e.paymentIntentID }
func (e *PurchaseEvent) Status() string           { return e.status }
func (e *PurchaseEvent) CreatedAt() time.Time     { return e.createdAt }
