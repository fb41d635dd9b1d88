package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
	domainerrors "onec-traders.backend/internal/domain/errors"
)

// PlanType identifies an investment plan
type PlanType string

const (
	PlanTypeOil    PlanType = "oil"
	PlanTypeShares PlanType = "shares"
	PlanTypeCrypto PlanType = "crypto"
	PlanTypeAI     PlanType = "ai"
)

var (
	// MaxROIPercentage caps lifetime ROI paid by one investment, as % of principal.
	MaxROIPercentage = decimal.NewFromInt(300)
	// MaxReferralCommissionPercentage caps commission distributed per payout event, as % of payout.
	MaxReferralCommissionPercentage = decimal.NewFromInt(20)
	// MaxCommissionPercentage is the looser ceiling used when auditing overall commission.
	MaxCommissionPercentage = decimal.NewFromInt(400)
)

// PlanDefinition describes an investment plan. ROI values are daily percentages.
type PlanDefinition struct {
	Type         PlanType        `json:"type"`
	ROIMin       decimal.Decimal `json:"roiMin"`
	ROIMax       decimal.Decimal `json:"roiMax"`
	MinInvest    decimal.Decimal `json:"minInvest"`
	MaxInvest    decimal.Decimal `json:"maxInvest"`
	DurationDays int             `json:"durationDays"`
}

var planCatalog = map[PlanType]PlanDefinition{
	PlanTypeOil:    newPlan(PlanTypeOil, 5000),
	PlanTypeShares: newPlan(PlanTypeShares, 10000),
	PlanTypeCrypto: newPlan(PlanTypeCrypto, 25000),
	PlanTypeAI:     newPlan(PlanTypeAI, 50000),
}

func newPlan(t PlanType, maxInvest int64) PlanDefinition {
	return PlanDefinition{
		Type:         t,
		ROIMin:       decimal.RequireFromString("1.5"),
		ROIMax:       decimal.RequireFromString("2.5"),
		MinInvest:    decimal.NewFromInt(100),
		MaxInvest:    decimal.NewFromInt(maxInvest),
		DurationDays: 365,
	}
}

// PlanTypes lists catalog entries in display order
var PlanTypes = []PlanType{PlanTypeOil, PlanTypeShares, PlanTypeCrypto, PlanTypeAI}

// GetPlan returns the plan definition for a type
func GetPlan(t PlanType) (PlanDefinition, error) {
	plan, ok := planCatalog[t]
	if !ok {
		return PlanDefinition{}, fmt.Errorf("%w: %q", domainerrors.ErrUnknownPlanType, t)
	}
	return plan, nil
}

// ListPlans returns every plan in the catalog
func ListPlans() []PlanDefinition {
	plans := make([]PlanDefinition, 0, len(PlanTypes))
	for _, t := range PlanTypes {
		plans = append(plans, planCatalog[t])
	}
	return plans
}

// ValidateInvestmentAmount checks amount against the plan's bounds (inclusive)
func ValidateInvestmentAmount(t PlanType, amount decimal.Decimal) error {
	plan, err := GetPlan(t)
	if err != nil {
		return err
	}
	if amount.LessThan(plan.MinInvest) || amount.GreaterThan(plan.MaxInvest) {
		return fmt.Errorf("%w: %s plan accepts %s to %s, got %s",
			domainerrors.ErrOutOfRange, t, plan.MinInvest.StringFixed(2), plan.MaxInvest.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}
