package models

import "time"

// UserModel maps the users table. The primary key is the identity-provider
// issued ID, not an auto-increment.
type UserModel struct {
	ID               string  `gorm:"primaryKey;size:64"`
	Email            string  `gorm:"uniqueIndex;size:255;not null"`
	BillingModel     string  `gorm:"size:20;not null;default:'pay-per-token'"`
	StripeCustomerID *string `gorm:"size:64;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserModel) TableName() string {
	return "users"
}
