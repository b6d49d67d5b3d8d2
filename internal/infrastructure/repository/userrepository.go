package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/mappers"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// UserRepository implements the user repository interface on gorm.
type UserRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user. A duplicate email surfaces as a conflict error
// so the caller can fall back to the existing record.
func (r *UserRepository) Create(ctx context.Context, userEntity *user.User) error {
	model := mappers.UserToModel(userEntity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			r.logger.Warnw("user already exists", "id", model.ID, "email", model.Email)
			return apperrors.NewConflictError("user already exists", model.Email)
		}
		r.logger.Errorw("failed to create user in database", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Infow("user created", "id", model.ID, "email", model.Email)
	return nil
}

// GetByID retrieves a user by identity-provider ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*user.User, error) {
	var model models.UserModel

	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by ID", "id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mappers.UserToDomain(&model)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel

	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mappers.UserToDomain(&model)
}

// GetByStripeCustomerID retrieves a user by the payment processor's customer
// ID. Used by the renewal slow path for subscriptions predating metadata
// tagging.
func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	var model models.UserModel

	if err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by stripe customer ID", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mappers.UserToDomain(&model)
}

// UpdateEmail changes only the email column of the matching row.
func (r *UserRepository) UpdateEmail(ctx context.Context, userID, email string) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Update("email", email)
	if result.Error != nil {
		r.logger.Errorw("failed to update user email", "id", userID, "error", result.Error)
		return fmt.Errorf("failed to update user email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	return nil
}

// ReassignID moves an existing record onto a new identity-provider ID. The
// ledger, key, and purchase rows must follow the user or the adopted account
// loses its balance and key. Schemas with enforced FKs move them via
// ON UPDATE CASCADE and the child updates match nothing; schemas without
// (gorm auto-migrate) rely on the explicit updates.
func (r *UserRepository) ReassignID(ctx context.Context, oldID, newID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserModel{}).
			Where("id = ?", oldID).
			Update("id", newID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("user not found", oldID)
		}

		if err := tx.Model(&models.TokenLedgerModel{}).
			Where("user_id = ?", oldID).
			Update("user_id", newID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.APIKeyModel{}).
			Where("user_id = ?", oldID).
			Update("user_id", newID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PurchaseEventModel{}).
			Where("user_id = ?", oldID).
			Update("user_id", newID).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if apperrors.GetAppError(err) != nil {
			return err
		}
		r.logger.Errorw("failed to reassign user ID", "old_id", oldID, "new_id", newID, "error", err)
		return fmt.Errorf("failed to reassign user ID: %w", err)
	}

	r.logger.Infow("user ID reassigned", "old_id", oldID, "new_id", newID)
	return nil
}

// SetStripeCustomerID persists the processor's customer ID on the user row.
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Update("stripe_customer_id", customerID)
	if result.Error != nil {
		r.logger.Errorw("failed to set stripe customer ID", "id", userID, "error", result.Error)
		return fmt.Errorf("failed to set stripe customer ID: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	return nil
}

// SetBillingModel updates the billing model column.
func (r *UserRepository) SetBillingModel(ctx context.Context, userID string, model user.BillingModel) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Update("billing_model", string(model))
	if result.Error != nil {
		r.logger.Errorw("failed to set billing model", "id", userID, "model", model, "error", result.Error)
		return fmt.Errorf("failed to set billing model: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found", userID)
	}
	return nil
}

// Delete removes the user row. Ledger and key rows follow via FK cascade.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.UserModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete user", "id", userID, "error", result.Error)
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	r.logger.Infow("user deleted", "id", userID, "rows", result.RowsAffected)
	return nil
}
