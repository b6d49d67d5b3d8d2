package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/user"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// SyncUserDeletedUseCase removes a user when their identity account is
// deleted. Ledger, key, and purchase rows follow via foreign key cascade, so
// replaying the event is a harmless no-op.
type SyncUserDeletedUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewSyncUserDeletedUseCase(userRepo user.Repository, logger logger.Interface) *SyncUserDeletedUseCase {
	return &SyncUserDeletedUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *SyncUserDeletedUseCase) Execute(ctx context.Context, userID string) error {
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	uc.logger.Infow("user removed after identity deletion", "user_id", userID)
	return nil
}
