// Package ledger contains the per-user token balance. One row per user,
// last-writer-wins on everything except credits, which are atomic increments
// at the store level.
package ledger

import (
	"fmt"
	"time"

	"github.com/meterly-io/meterly/internal/shared/biztime"
)

// SeedTokens is the free balance granted when a ledger is first created.
const SeedTokens = 100

type TokenLedger struct {
	userID    string
	available int64
	used      int64
	updatedAt time.Time
}

// NewTokenLedger creates a ledger seeded with the signup grant.
func NewTokenLedger(userID string) (*TokenLedger, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return &TokenLedger{
		userID:    userID,
		available: SeedTokens,
		used:      0,
		updatedAt: biztime.NowUTC(),
	}, nil
}

// ReconstructTokenLedger rebuilds a ledger from persisted state.
func ReconstructTokenLedger(userID string, available, used int64, updatedAt time.Time) *TokenLedger {
	return &TokenLedger{
		userID:    userID,
		available: available,
		used:      used,
		updatedAt: updatedAt,
	}
}

func (l *TokenLedger) UserID() string       { return l.userID }
func (l *TokenLedger) Available() int64     { return l.available }
func (l *TokenLedger) Used() int64          { return l.used }
func (l *TokenLedger) UpdatedAt() time.Time { return l.updatedAt }
