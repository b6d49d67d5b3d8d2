package billing

import "context"

// PurchaseEventRepository persists the append-only audit trail.
type PurchaseEventRepository interface {
	Create(ctx context.Context, e *PurchaseEvent) error

	// ExistsBySessionID reports whether a checkout session was already
	// recorded. This is the idempotence guard against duplicate webhook
	// delivery double-crediting a purchase.
	ExistsBySessionID(ctx context.Context, sessionID string) (bool, error)

	ListByUserID(ctx context.Context, userID string, limit int) ([]*PurchaseEvent, error)
}
