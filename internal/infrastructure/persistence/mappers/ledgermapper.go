package mappers

import (
	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
)

// LedgerToModel converts a domain ledger to its persistence model.
func LedgerToModel(l *ledger.TokenLedger) *models.TokenLedgerModel {
	return &models.TokenLedgerModel{
		UserID:    l.UserID(),
		Available: l.Available(),
		Used:      l.Used(),
		UpdatedAt: l.UpdatedAt(),
	}
}

// LedgerToDomain converts a persistence model back to the domain entity.
func LedgerToDomain(model *models.TokenLedgerModel) *ledger.TokenLedger {
	return ledger.ReconstructTokenLedger(
		model.UserID,
		model.Available,
		model.Used,
		model.UpdatedAt,
	)
}
