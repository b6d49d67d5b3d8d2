package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/user"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// DeleteAccountUseCase removes the user's row on their own request. Ledger,
// key, and purchase history follow via foreign key cascade. The identity
// provider's record is the user's to delete; a later user.deleted webhook
// replays harmlessly.
type DeleteAccountUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewDeleteAccountUseCase(userRepo user.Repository, logger logger.Interface) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *DeleteAccountUseCase) Execute(ctx context.Context, userID string) error {
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	uc.logger.Infow("account deleted by user", "user_id", userID)
	return nil
}
