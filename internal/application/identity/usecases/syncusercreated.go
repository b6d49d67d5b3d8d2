package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// SyncUserCreatedUseCase mirrors a signup event into the local store. The
// provider redelivers events, so every path converges: an existing row is
// self-healed, an email match adopts the new provider ID, and only a truly
// unknown user gets a fresh row with its seed ledger and API key.
type SyncUserCreatedUseCase struct {
	userRepo     user.Repository
	ledgerRepo   ledger.Repository
	provisionKey KeyProvisioner
	logger       logger.Interface
}

func NewSyncUserCreatedUseCase(
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	provisionKey KeyProvisioner,
	logger logger.Interface,
) *SyncUserCreatedUseCase {
	return &SyncUserCreatedUseCase{
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		provisionKey: provisionKey,
		logger:       logger,
	}
}

func (uc *SyncUserCreatedUseCase) Execute(ctx context.Context, cmd SyncUserCommand) error {
	email := primaryEmail(cmd.Emails)
	if email == "" {
		uc.logger.Warnw("user created event has no usable email", "user_id", cmd.UserID)
		return apperrors.NewValidationError("user has no email address", cmd.UserID)
	}

	existing, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		uc.selfHeal(ctx, cmd.UserID)
		return nil
	}

	// A row under the same email but a different provider ID means the user
	// deleted and recreated their identity account. Adopt the new ID so their
	// balance and key survive.
	byEmail, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user by email: %w", err)
	}
	if byEmail != nil {
		if err := uc.userRepo.ReassignID(ctx, byEmail.ID(), cmd.UserID); err != nil {
			return fmt.Errorf("failed to adopt new identity ID: %w", err)
		}
		uc.logger.Infow("user identity re-linked by email", "old_id", byEmail.ID(), "new_id", cmd.UserID)
		uc.selfHeal(ctx, cmd.UserID)
		return nil
	}

	newUser, err := user.NewUser(cmd.UserID, email)
	if err != nil {
		return fmt.Errorf("failed to build user: %w", err)
	}
	if err := uc.userRepo.Create(ctx, newUser); err != nil {
		if apperrors.IsConflictError(err) {
			// Concurrent redelivery won the insert.
			uc.selfHeal(ctx, cmd.UserID)
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	uc.selfHeal(ctx, cmd.UserID)
	return nil
}

// selfHeal ensures the dependent rows exist. Failures are logged and
// swallowed; a user without a ledger or key is repaired on the next event.
func (uc *SyncUserCreatedUseCase) selfHeal(ctx context.Context, userID string) {
	seeded, err := ledger.NewTokenLedger(userID)
	if err != nil {
		uc.logger.Errorw("failed to build seed ledger", "user_id", userID, "error", err)
	} else if err := uc.ledgerRepo.Create(ctx, seeded); err != nil && !apperrors.IsConflictError(err) {
		uc.logger.Errorw("failed to seed token ledger", "user_id", userID, "error", err)
	}

	if err := uc.provisionKey.Execute(ctx, userID); err != nil {
		uc.logger.Errorw("failed to provision API key", "user_id", userID, "error", err)
	}
}
