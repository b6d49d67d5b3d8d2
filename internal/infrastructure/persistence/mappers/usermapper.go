package mappers

import (
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/user"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
)

// UserToModel converts a domain user to its persistence model.
func UserToModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:               u.ID(),
		Email:            u.Email(),
		BillingModel:     string(u.BillingModel()),
		StripeCustomerID: u.StripeCustomerID(),
		CreatedAt:        u.CreatedAt(),
		UpdatedAt:        u.UpdatedAt(),
	}
}

// UserToDomain converts a persistence model back to the domain entity.
func UserToDomain(model *models.UserModel) (*user.User, error) {
	billingModel := user.BillingModel(model.BillingModel)
	if !billingModel.IsValid() {
		return nil, fmt.Errorf("invalid billing model: %s", model.BillingModel)
	}

	return user.ReconstructUser(
		model.ID,
		model.Email,
		billingModel,
		model.StripeCustomerID,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}
