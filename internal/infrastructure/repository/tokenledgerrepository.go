package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meterly-io/meterly/internal/domain/ledger"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/mappers"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/biztime"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// TokenLedgerRepository implements the ledger repository interface on gorm.
type TokenLedgerRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewTokenLedgerRepository creates a new token ledger repository.
func NewTokenLedgerRepository(db *gorm.DB, logger logger.Interface) ledger.Repository {
	return &TokenLedgerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a seeded ledger row. A duplicate row surfaces as a conflict
// error so self-healing callers can treat it as already-done.
func (r *TokenLedgerRepository) Create(ctx context.Context, ledgerEntity *ledger.TokenLedger) error {
	model := mappers.LedgerToModel(ledgerEntity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("token ledger already exists", model.UserID)
		}
		r.logger.Errorw("failed to create token ledger", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create token ledger: %w", err)
	}

	r.logger.Infow("token ledger created", "user_id", model.UserID, "available", model.Available)
	return nil
}

// GetByUserID retrieves a user's ledger, or (nil, nil) when no row exists.
func (r *TokenLedgerRepository) GetByUserID(ctx context.Context, userID string) (*ledger.TokenLedger, error) {
	var model models.TokenLedgerModel

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get token ledger", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get token ledger: %w", err)
	}

	return mappers.LedgerToDomain(&model), nil
}

// Credit adds tokens to the available balance with an insert-or-increment
// upsert. The increment runs inside SQL, so concurrent credits for the same
// user serialize at the row instead of racing a read-modify-write.
func (r *TokenLedgerRepository) Credit(ctx context.Context, userID string, tokens int64) error {
	now := biztime.NowUTC()
	model := &models.TokenLedgerModel{
		UserID:    userID,
		Available: tokens,
		Used:      0,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"available":  gorm.Expr("available + ?", tokens),
			"updated_at": now,
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to credit token ledger", "user_id", userID, "tokens", tokens, "error", err)
		return fmt.Errorf("failed to credit token ledger: %w", err)
	}

	r.logger.Infow("token ledger credited", "user_id", userID, "tokens", tokens)
	return nil
}
