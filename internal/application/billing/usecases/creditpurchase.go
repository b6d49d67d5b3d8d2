package usecases

import (
	"context"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/domain/user"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// CreditPurchaseCommand is the normalized outcome of a successful payment
// event, ready to be applied to the ledger.
type CreditPurchaseCommand struct {
	UserID          string
	EventType       string
	PlanID          string
	AmountCents     int64
	Tokens          int64
	SessionID       string
	PaymentIntentID string
	IsSubscription  bool
}

// CreditPurchaseUseCase is the shared credit step behind every payment
// webhook. The ledger credit is the only fatal write; the billing model flip
// and the audit row are best-effort and never undo a delivered balance.
type CreditPurchaseUseCase struct {
	userRepo     user.Repository
	ledgerRepo   ledger.Repository
	purchaseRepo billing.PurchaseEventRepository
	logger       logger.Interface
}

func NewCreditPurchaseUseCase(
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	purchaseRepo billing.PurchaseEventRepository,
	logger logger.Interface,
) *CreditPurchaseUseCase {
	return &CreditPurchaseUseCase{
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

func (uc *CreditPurchaseUseCase) Execute(ctx context.Context, cmd CreditPurchaseCommand) error {
	if cmd.Tokens <= 0 {
		return fmt.Errorf("token amount must be positive, got %d", cmd.Tokens)
	}

	// The processor delivers checkout.session.completed and
	// payment_intent.succeeded for the same purchase; the recorded session ID
	// absorbs the second delivery.
	if cmd.SessionID != "" {
		seen, err := uc.purchaseRepo.ExistsBySessionID(ctx, cmd.SessionID)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate session: %w", err)
		}
		if seen {
			uc.logger.Infow("session already credited, skipping",
				"session_id", cmd.SessionID, "user_id", cmd.UserID)
			return nil
		}
	}

	if err := uc.ledgerRepo.Credit(ctx, cmd.UserID, cmd.Tokens); err != nil {
		return fmt.Errorf("failed to credit ledger: %w", err)
	}

	uc.logger.Infow("tokens credited",
		"user_id", cmd.UserID,
		"plan", cmd.PlanID,
		"tokens", cmd.Tokens,
		"event_type", cmd.EventType)

	if cmd.IsSubscription {
		if err := uc.userRepo.SetBillingModel(ctx, cmd.UserID, user.BillingModelPro); err != nil {
			uc.logger.Errorw("failed to flip billing model after credit",
				"user_id", cmd.UserID, "error", err)
		}
	}

	evt, err := billing.NewPurchaseEvent(cmd.UserID, cmd.EventType, cmd.PlanID,
		cmd.AmountCents, cmd.Tokens, cmd.SessionID, cmd.PaymentIntentID,
		billing.PurchaseStatusCompleted)
	if err != nil {
		uc.logger.Errorw("failed to build purchase audit record",
			"user_id", cmd.UserID, "error", err)
		return nil
	}
	if err := uc.purchaseRepo.Create(ctx, evt); err != nil {
		uc.logger.Errorw("failed to record purchase audit row",
			"user_id", cmd.UserID, "session_id", cmd.SessionID, "error", err)
	}

	return nil
}
