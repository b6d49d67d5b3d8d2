package apikey

import "context"

// Repository persists API keys. Lookups return (nil, nil) when no row
// matches. Rotation is delete-then-insert, never update-in-place, so a
// concurrent reader sees either the old key or none.
type Repository interface {
	Create(ctx context.Context, k *APIKey) error
	GetByUserID(ctx context.Context, userID string) (*APIKey, error)
	GetByHashedKey(ctx context.Context, hashedKey string) (*APIKey, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
