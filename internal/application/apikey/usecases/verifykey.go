package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
)

// VerifyKeyUseCase resolves a presented API key to its owner via the stored
// digest. Plaintext is never compared or logged.
type VerifyKeyUseCase struct {
	keyRepo   apikey.Repository
	generator KeyGenerator
}

func NewVerifyKeyUseCase(keyRepo apikey.Repository, generator KeyGenerator) *VerifyKeyUseCase {
	return &VerifyKeyUseCase{
		keyRepo:   keyRepo,
		generator: generator,
	}
}

// Execute returns the owning user's ID, or an unauthorized error for unknown
// key material.
func (uc *VerifyKeyUseCase) Execute(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperrors.NewUnauthorizedError("API key is required")
	}

	key, err := uc.keyRepo.GetByHashedKey(ctx, uc.generator.Hash(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to look up key: %w", err)
	}
	if key == nil {
		return "", apperrors.NewUnauthorizedError("invalid API key")
	}
	return key.UserID(), nil
}
