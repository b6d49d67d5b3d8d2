package mappers

import (
	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
)

// PurchaseEventToModel converts a domain audit record to its persistence
// model. The raw event payload is attached by the repository when available.
func PurchaseEventToModel(e *billing.PurchaseEvent) *models.PurchaseEventModel {
	return &models.PurchaseEventModel{
		ID:              e.ID(),
		UserID:          e.UserID(),
		EventType:       e.EventType(),
		Plan:            e.Plan(),
		AmountCents:     e.AmountCents(),
		Tokens:          e.Tokens(),
		SessionID:       e.SessionID(),
		PaymentIntentID: e.PaymentIntentID(),
		Status:          e.Status(),
		CreatedAt:       e.CreatedAt(),
	}
}

// PurchaseEventToDomain converts a persistence model back to the domain
// entity.
func PurchaseEventToDomain(model *models.PurchaseEventModel) *billing.PurchaseEvent {
	return billing.ReconstructPurchaseEvent(
		model.ID,
		model.UserID,
		model.EventType,
		model.Plan,
		model.AmountCents,
		model.Tokens,
		model.SessionID,
		model.PaymentIntentID,
		model.Status,
		model.CreatedAt,
	)
}
