package usecases

import (
	"context"
	"fmt"

	apikeyUC "github.com/meterly-io/meterly/internal/application/apikey/usecases"
	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type DashboardResult struct {
	UserID          string
	Email           string
	BillingModel    string
	AvailableTokens int64
	UsedTokens      int64
	// MaskedAPIKey shows enough of the key to recognize it, never enough to
	// use it. Empty when no key can be displayed.
	MaskedAPIKey string
}

// GetDashboardUseCase assembles the account overview: profile, balance, and
// a masked key. A missing ledger reads as zero; webhook-driven seeding may
// still be in flight.
type GetDashboardUseCase struct {
	userRepo   user.Repository
	ledgerRepo ledger.Repository
	getKey     *apikeyUC.GetKeyUseCase
	logger     logger.Interface
}

func NewGetDashboardUseCase(
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	getKey *apikeyUC.GetKeyUseCase,
	logger logger.Interface,
) *GetDashboardUseCase {
	return &GetDashboardUseCase{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		getKey:     getKey,
		logger:     logger,
	}
}

func (uc *GetDashboardUseCase) Execute(ctx context.Context, userID string) (*DashboardResult, error) {
	owner, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if owner == nil {
		return nil, apperrors.NewNotFoundError("user not found", userID)
	}

	result := &DashboardResult{
		UserID:       owner.ID(),
		Email:        owner.Email(),
		BillingModel: string(owner.BillingModel()),
	}

	balance, err := uc.ledgerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if balance != nil {
		result.AvailableTokens = balance.Available()
		result.UsedTokens = balance.Used()
	}

	key, err := uc.getKey.Execute(ctx, userID)
	if err != nil {
		uc.logger.Warnw("dashboard key lookup failed", "user_id", userID, "error", err)
	} else if key.Available {
		result.MaskedAPIKey = maskKey(key.APIKey)
	}

	return result, nil
}

func maskKey(plaintext string) string {
	if len(plaintext) <= 10 {
		return plaintext
	}
	return plaintext[:6] + "..." + plaintext[len(plaintext)-4:]
}
