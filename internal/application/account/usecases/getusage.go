package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/ledger"
)

type UsageResult struct {
	AvailableTokens int64
	UsedTokens      int64
}

// GetUsageUseCase reports the balance behind an API key. It only reads; the
// metering service that debits usage lives elsewhere.
type GetUsageUseCase struct {
	ledgerRepo ledger.Repository
}

func NewGetUsageUseCase(ledgerRepo ledger.Repository) *GetUsageUseCase {
	return &GetUsageUseCase{ledgerRepo: ledgerRepo}
}

func (uc *GetUsageUseCase) Execute(ctx context.Context, userID string) (*UsageResult, error) {
	balance, err := uc.ledgerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if balance == nil {
		return &UsageResult{}, nil
	}
	return &UsageResult{
		AvailableTokens: balance.Available(),
		UsedTokens:      balance.Used(),
	}, nil
}
