package models

import "time"

// TokenLedgerModel maps the token_ledger table, one row per user.
type TokenLedgerModel struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Available int64  `gorm:"not null;default:0"`
	Used      int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (TokenLedgerModel) TableName() string {
	return "token_ledger"
}
