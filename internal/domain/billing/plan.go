// Package billing contains the static plan catalog and the append-only
// purchase audit trail.
package billing

import "fmt"

// Plan is a statically configured combination of price, token grant, and
// payment cadence.
type Plan struct {
	ID             string
	Name           string
	PriceCents     int64
	Tokens         int64
	IsSubscription bool
}

// Plan identifiers referenced by checkout requests and webhook metadata.
const (
	PlanStarterPack    = "starter-pack"
	PlanBasePack       = "base-pack"
	PlanValuePack      = "value-pack"
	PlanHighRollerPack = "high-roller-pack"
	PlanPro            = "pro"
)

var planCatalog = map[string]Plan{
	PlanStarterPack: {
		ID:         PlanStarterPack,
		Name:       "Starter Pack",
		PriceCents: 500,
		Tokens:     500,
	},
	PlanBasePack: {
		ID:         PlanBasePack,
		Name:       "Base Pack",
		PriceCents: 1000,
		Tokens:     1000,
	},
	PlanValuePack: {
		ID:         PlanValuePack,
		Name:       "Value Pack",
		PriceCents: 2000,
		Tokens:     2500,
	},
	PlanHighRollerPack: {
		ID:         PlanHighRollerPack,
		Name:       "High Roller Pack",
		PriceCents: 5000,
		Tokens:     7500,
	},
	PlanPro: {
		ID:             PlanPro,
		Name:           "Pro Plan (Monthly)",
		PriceCents:     1900,
		Tokens:         2500,
		IsSubscription: true,
	},
}

// LookupPlan resolves a plan identifier. An unknown identifier is a hard
// configuration error; callers must never default it silently.
func LookupPlan(planID string) (Plan, error) {
	plan, ok := planCatalog[planID]
	if !ok {
		return Plan{}, fmt.Errorf("unknown plan: %q", planID)
	}
	return plan, nil
}

// Plans returns all configured plans in no particular order.
func Plans() []Plan {
	out := make([]Plan, 0, len(planCatalog))
	for _, p := range planCatalog {
		out = append(out, p)
	}
	return out
}
