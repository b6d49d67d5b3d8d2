package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/mappers"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// APIKeyRepository implements the API key repository interface on gorm.
type APIKeyRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewAPIKeyRepository creates a new API key repository.
func NewAPIKeyRepository(db *gorm.DB, logger logger.Interface) apikey.Repository {
	return &APIKeyRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new key row and writes the generated ID back.
func (r *APIKeyRepository) Create(ctx context.Context, keyEntity *apikey.APIKey) error {
	model := mappers.APIKeyToModel(keyEntity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("API key already exists for user", model.UserID)
		}
		r.logger.Errorw("failed to create API key", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create API key: %w", err)
	}

	keyEntity.SetID(model.ID)
	r.logger.Infow("API key created", "user_id", model.UserID)
	return nil
}

// GetByUserID retrieves a user's key, or (nil, nil) when none exists.
func (r *APIKeyRepository) GetByUserID(ctx context.Context, userID string) (*apikey.APIKey, error) {
	var model models.APIKeyModel

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get API key by user ID", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return mappers.APIKeyToDomain(&model), nil
}

// GetByHashedKey looks a key up by the digest of a presented credential.
func (r *APIKeyRepository) GetByHashedKey(ctx context.Context, hashedKey string) (*apikey.APIKey, error) {
	var model models.APIKeyModel

	if err := r.db.WithContext(ctx).Where("hashed_key = ?", hashedKey).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get API key by hash", "error", err)
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return mappers.APIKeyToDomain(&model), nil
}

// DeleteByUserID removes a user's key row. Deleting a missing row is not an
// error; rotation must be replayable.
func (r *APIKeyRepository) DeleteByUserID(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.APIKeyModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete API key", "user_id", userID, "error", result.Error)
		return fmt.Errorf("failed to delete API key: %w", result.Error)
	}
	return nil
}
