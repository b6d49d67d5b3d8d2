// Package user contains the user aggregate. A user is keyed by the ID the
// external identity provider issued, which stays stable across renames.
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/meterly-io/meterly/internal/shared/biztime"
)

// BillingModel selects between metered and flat-rate access.
type BillingModel string

const (
	BillingModelPayPerToken BillingModel = "pay-per-token"
	BillingModelPro         BillingModel = "pro"
)

func (m BillingModel) IsValid() bool {
	return m == BillingModelPayPerToken || m == BillingModelPro
}

type User struct {
	id               string
	email            string
	billingModel     BillingModel
	stripeCustomerID *string
	createdAt        time.Time
	updatedAt        time.Time
}

// NewUser creates a user with the metered default billing model.
func NewUser(id, email string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %q", email)
	}

	now := biztime.NowUTC()
	return &User{
		id:           id,
		email:        email,
		billingModel: BillingModelPayPerToken,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a user from persisted state. Used by mappers only.
func ReconstructUser(id, email string, billingModel BillingModel, stripeCustomerID *string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:               id,
		email:            email,
		billingModel:     billingModel,
		stripeCustomerID: stripeCustomerID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (u *User) ID() string                 { return u.id }
func (u *User) Email() string              { return u.email }
func (u *User) BillingModel() BillingModel { return u.billingModel }
func (u *User) StripeCustomerID() *string  { return u.stripeCustomerID }
func (u *User) CreatedAt() time.Time       { return u.createdAt }
func (u *User) UpdatedAt() time.Time       { return u.updatedAt }

// ChangeEmail replaces the primary email address.
func (u *User) ChangeEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email: %q", email)
	}
	u.email = email
	u.updatedAt = biztime.NowUTC()
	return nil
}

// UpgradeToPro flips the billing model to the flat-rate subscription plan.
func (u *User) UpgradeToPro() {
	u.billingModel = BillingModelPro
	u.updatedAt = biztime.NowUTC()
}

// AttachStripeCustomer records the payment processor's customer ID so renewal
// invoices can be matched back to this user.
func (u *User) AttachStripeCustomer(customerID string) error {
	if customerID == "" {
		return fmt.Errorf("stripe customer ID is required")
	}
	u.stripeCustomerID = &customerID
	u.updatedAt = biztime.NowUTC()
	return nil
}
