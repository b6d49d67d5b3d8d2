package models

import (
	"time"

	"gorm.io/datatypes"
)

// PurchaseEventModel maps the purchase_events audit table. Append-only; the
// unique session index doubles as the checkout idempotence guard.
type PurchaseEventModel struct {
	ID              string  `gorm:"primaryKey;size:32"`
	UserID          string  `gorm:"index;size:64;not null"`
	EventType       string  `gorm:"size:64;not null"`
	Plan            string  `gorm:"size:32;not null"`
	AmountCents     int64   `gorm:"not null"`
	Tokens          int64   `gorm:"not null"`
	SessionID       *string `gorm:"uniqueIndex;size:128"`
	PaymentIntentID *string `gorm:"size:128"`
	Status          string  `gorm:"size:20;not null"`
	RawEvent        datatypes.JSON
	CreatedAt       time.Time
}

func (PurchaseEventModel) TableName() string {
	return "purchase_events"
}
