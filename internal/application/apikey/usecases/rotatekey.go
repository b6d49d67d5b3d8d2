package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type RotateKeyResult struct {
	APIKey string
}

// RotateKeyUseCase replaces a user's API key. The old key stops working the
// moment its row is deleted; a failure between delete and insert leaves the
// user keyless until the next rotation, which is preferred over ever having
// two live keys.
type RotateKeyUseCase struct {
	keyRepo   apikey.Repository
	generator KeyGenerator
	cipher    KeyCipher
	logger    logger.Interface
}

func NewRotateKeyUseCase(
	keyRepo apikey.Repository,
	generator KeyGenerator,
	cipher KeyCipher,
	logger logger.Interface,
) *RotateKeyUseCase {
	return &RotateKeyUseCase{
		keyRepo:   keyRepo,
		generator: generator,
		cipher:    cipher,
		logger:    logger,
	}
}

func (uc *RotateKeyUseCase) Execute(ctx context.Context, userID string) (*RotateKeyResult, error) {
	if err := uc.keyRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke existing key: %w", err)
	}

	plaintext, err := uc.generator.Generate()
	if err != nil {
		uc.logger.Errorw("key generation failed after revocation", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	encrypted, err := uc.cipher.Encrypt(plaintext)
	if err != nil {
		uc.logger.Errorw("key encryption failed after revocation", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to encrypt key: %w", err)
	}

	key, err := apikey.NewAPIKey(userID, uc.generator.Hash(plaintext), encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to build key record: %w", err)
	}

	if err := uc.keyRepo.Create(ctx, key); err != nil {
		uc.logger.Errorw("key insert failed after revocation", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to store key: %w", err)
	}

	uc.logger.Infow("API key rotated", "user_id", userID)
	return &RotateKeyResult{APIKey: plaintext}, nil
}
