package repository

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meterly-io/meterly/internal/domain/billing"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/mappers"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// PurchaseEventRepository implements the audit trail repository on gorm.
type PurchaseEventRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewPurchaseEventRepository creates a new purchase event repository.
func NewPurchaseEventRepository(db *gorm.DB, logger logger.Interface) billing.PurchaseEventRepository {
	return &PurchaseEventRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit record. A duplicate session ID surfaces as a
// conflict error, which the credit flow treats as "already processed".
func (r *PurchaseEventRepository) Create(ctx context.Context, eventEntity *billing.PurchaseEvent) error {
	model := mappers.PurchaseEventToModel(eventEntity)
	model.RawEvent = datatypes.JSON([]byte(fmt.Sprintf(
		`{"plan":%q,"tokens":%d,"amount_cents":%d,"status":%q}`,
		model.Plan, model.Tokens, model.AmountCents, model.Status,
	)))

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("purchase event already recorded", model.ID)
		}
		r.logger.Errorw("failed to create purchase event", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create purchase event: %w", err)
	}

	r.logger.Infow("purchase event recorded",
		"event_id", model.ID,
		"user_id", model.UserID,
		"plan", model.Plan,
		"tokens", model.Tokens)
	return nil
}

// ExistsBySessionID reports whether a checkout session was already recorded.
func (r *PurchaseEventRepository) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseEventModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check purchase event by session ID", "session_id", sessionID, "error", err)
		return false, fmt.Errorf("failed to check purchase event: %w", err)
	}
	return count > 0, nil
}

// ListByUserID returns a user's most recent purchase records.
func (r *PurchaseEventRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*billing.PurchaseEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	var modelList []*models.PurchaseEventModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list purchase events", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list purchase events: %w", err)
	}

	events := make([]*billing.PurchaseEvent, 0, len(modelList))
	for _, model := range modelList {
		events = append(events, mappers.PurchaseEventToDomain(model))
	}
	return events, nil
}
