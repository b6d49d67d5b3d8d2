package ledger

import "context"

// Repository persists token ledgers. GetByUserID returns (nil, nil) when the
// user has no ledger row yet.
type Repository interface {
	Create(ctx context.Context, l *TokenLedger) error
	GetByUserID(ctx context.Context, userID string) (*TokenLedger, error)

	// Credit atomically adds tokens to the available balance, inserting the
	// row if it does not exist. The increment happens in SQL so two
	// concurrent credits for the same user cannot lose an update.
	Credit(ctx context.Context, userID string, tokens int64) error
}
