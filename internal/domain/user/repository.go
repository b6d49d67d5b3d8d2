package user

import "context"

// Repository persists users. Lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)

	// UpdateEmail changes only the email column of the matching row.
	UpdateEmail(ctx context.Context, id, email string) error

	// ReassignID moves an existing local record onto a new identity-provider
	// ID, e.g. after a re-registration with the same email. Ledger, key, and
	// purchase rows keyed to the old ID move with the user.
	ReassignID(ctx context.Context, oldID, newID string) error

	SetStripeCustomerID(ctx context.Context, id, customerID string) error
	SetBillingModel(ctx context.Context, id string, model BillingModel) error

	// Delete removes the user row; dependent ledger and key rows go with it
	// via referential cascade.
	Delete(ctx context.Context, id string) error
}
