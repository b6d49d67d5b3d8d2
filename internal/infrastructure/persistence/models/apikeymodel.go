package models

import "time"

// APIKeyModel maps the api_keys table. The hashed key is the verification
// lookup column; the encrypted copy exists only for display-on-demand.
type APIKeyModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"uniqueIndex;size:64;not null"`
	HashedKey    string `gorm:"uniqueIndex;size:64;not null"`
	EncryptedKey string `gorm:"type:text;not null"`
	CreatedAt    time.Time
}

func (APIKeyModel) TableName() string {
	return "api_keys"
}
