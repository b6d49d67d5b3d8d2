package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type GetKeyResult struct {
	// APIKey is the decrypted plaintext, empty when unavailable.
	APIKey string
	// Available is false when the user has no key or the stored ciphertext
	// cannot be opened with the current secret.
	Available bool
}

// GetKeyUseCase returns the user's key for dashboard display. Undecryptable
// ciphertext degrades to "no key available" so a secret rotation never takes
// the account page down.
type GetKeyUseCase struct {
	keyRepo apikey.Repository
	cipher  KeyCipher
	logger  logger.Interface
}

func NewGetKeyUseCase(keyRepo apikey.Repository, cipher KeyCipher, logger logger.Interface) *GetKeyUseCase {
	return &GetKeyUseCase{
		keyRepo: keyRepo,
		cipher:  cipher,
		logger:  logger,
	}
}

func (uc *GetKeyUseCase) Execute(ctx context.Context, userID string) (*GetKeyResult, error) {
	key, err := uc.keyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load key: %w", err)
	}
	if key == nil {
		return &GetKeyResult{Available: false}, nil
	}

	plaintext, err := uc.cipher.Decrypt(key.EncryptedKey())
	if err != nil {
		uc.logger.Warnw("stored key could not be decrypted", "user_id", userID, "error", err)
		return &GetKeyResult{Available: false}, nil
	}

	return &GetKeyResult{APIKey: plaintext, Available: true}, nil
}
