package mappers

import (
	"github.com/meterly-io/meterly/internal/domain/apikey"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
)

// APIKeyToModel converts a domain API key to its persistence model.
func APIKeyToModel(k *apikey.APIKey) *models.APIKeyModel {
	return &models.APIKeyModel{
		ID:           k.ID(),
		UserID:       k.UserID(),
		HashedKey:    k.HashedKey(),
		EncryptedKey: k.EncryptedKey(),
		CreatedAt:    k.CreatedAt(),
	}
}

// APIKeyToDomain converts a persistence model back to the domain entity.
func APIKeyToDomain(model *models.APIKeyModel) *apikey.APIKey {
	return apikey.ReconstructAPIKey(
		model.ID,
		model.UserID,
		model.HashedKey,
		model.EncryptedKey,
		model.CreatedAt,
	)
}
