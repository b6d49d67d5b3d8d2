package usecases

import "context"

// EmailAddress is one address on the identity provider's user record.
type EmailAddress struct {
	Address  string
	Verified bool
}

// SyncUserCommand carries the identity fields shared by create and update
// events.
type SyncUserCommand struct {
	UserID string
	Emails []EmailAddress
}

// KeyProvisioner creates an API key for a user who has none.
type KeyProvisioner interface {
	Execute(ctx context.Context, userID string) error
}

// primaryEmail picks the address of record: the first verified one, falling
// back to the first listed. Empty means the event is unusable.
func primaryEmail(emails []EmailAddress) string {
	for _, e := range emails {
		if e.Verified && e.Address != "" {
			return e.Address
		}
	}
	for _, e := range emails {
		if e.Address != "" {
			return e.Address
		}
	}
	return ""
}
