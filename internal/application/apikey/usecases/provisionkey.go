package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// ProvisionKeyUseCase creates a key for a user who has none. Identity sync
// runs it on signup and during self-healing, so an existing key is a no-op,
// and a concurrent insert losing the race is treated the same way.
type ProvisionKeyUseCase struct {
	keyRepo   apikey.Repository
	generator KeyGenerator
	cipher    KeyCipher
	logger    logger.Interface
}

func NewProvisionKeyUseCase(
	keyRepo apikey.Repository,
	generator KeyGenerator,
	cipher KeyCipher,
	logger logger.Interface,
) *ProvisionKeyUseCase {
	return &ProvisionKeyUseCase{
		keyRepo:   keyRepo,
		generator: generator,
		cipher:    cipher,
		logger:    logger,
	}
}

func (uc *ProvisionKeyUseCase) Execute(ctx context.Context, userID string) error {
	existing, err := uc.keyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check existing key: %w", err)
	}
	if existing != nil {
		return nil
	}

	plaintext, err := uc.generator.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	encrypted, err := uc.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt key: %w", err)
	}

	key, err := apikey.NewAPIKey(userID, uc.generator.Hash(plaintext), encrypted)
	if err != nil {
		return fmt.Errorf("failed to build key record: %w", err)
	}

	if err := uc.keyRepo.Create(ctx, key); err != nil {
		if apperrors.IsConflictError(err) {
			uc.logger.Debugw("key already provisioned concurrently", "user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to store key: %w", err)
	}

	uc.logger.Infow("API key provisioned", "user_id", userID)
	return nil
}
