package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// SyncUserUpdatedUseCase keeps the local email in step with the identity
// provider. Only the email moves; billing state never changes on identity
// events.
type SyncUserUpdatedUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewSyncUserUpdatedUseCase(userRepo user.Repository, logger logger.Interface) *SyncUserUpdatedUseCase {
	return &SyncUserUpdatedUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *SyncUserUpdatedUseCase) Execute(ctx context.Context, cmd SyncUserCommand) error {
	email := primaryEmail(cmd.Emails)
	if email == "" {
		uc.logger.Warnw("user updated event has no usable email", "user_id", cmd.UserID)
		return apperrors.NewValidationError("user has no email address", cmd.UserID)
	}

	if err := uc.userRepo.UpdateEmail(ctx, cmd.UserID, email); err != nil {
		if apperrors.IsNotFoundError(err) {
			uc.logger.Warnw("update for unknown user ignored", "user_id", cmd.UserID)
			return nil
		}
		return fmt.Errorf("failed to update user email: %w", err)
	}

	uc.logger.Infow("user email synced", "user_id", cmd.UserID)
	return nil
}
