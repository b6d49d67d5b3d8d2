package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPlan(t *testing.T) {
	tests := []struct {
		planID         string
		name           string
		priceCents     int64
		tokens         int64
		isSubscription bool
	}{
		{PlanStarterPack, "Starter Pack", 500, 500, false},
		{PlanBasePack, "Base Pack", 1000, 1000, false},
		{PlanValuePack, "Value Pack", 2000, 2500, false},
		{PlanHighRollerPack, "High Roller Pack", 5000, 7500, false},
		{PlanPro, "Pro Plan (Monthly)", 1900, 2500, true},
	}

	for _, tt := range tests {
		t.Run(tt.planID, func(t *testing.T) {
			plan, err := LookupPlan(tt.planID)
			require.NoError(t, err)
			assert.Equal(t, tt.name, plan.Name)
			assert.Equal(t, tt.priceCents, plan.PriceCents)
			assert.Equal(t, tt.tokens, plan.Tokens)
			assert.Equal(t, tt.isSubscription, plan.IsSubscription)
		})
	}
}

func TestLookupPlan_AllPlansHavePositivePriceAndTokens(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 5)

	for _, plan := range plans {
		assert.Greater(t, plan.Tokens, int64(0), "plan %s", plan.ID)
		assert.Greater(t, plan.PriceCents, int64(0), "plan %s", plan.ID)
	}
}

func TestLookupPlan_UnknownPlanIsHardError(t *testing.T) {
	_, err := LookupPlan("mega-pack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown plan")

	_, err = LookupPlan("")
	require.Error(t, err)
}
