package usecases

import (
	"github.com/shopspring/decimal"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/pkg/utils"
)

// RoiCapPolicy bounds the lifetime ROI an investment may pay, as a percentage of principal
type RoiCapPolicy struct {
	MaxPercentage decimal.Decimal
}

// DefaultRoiCapPolicy caps lifetime ROI at 300% of principal
func DefaultRoiCapPolicy() RoiCapPolicy {
	return RoiCapPolicy{MaxPercentage: entities.MaxROIPercentage}
}

// Cap returns the lifetime ceiling for principal
func (p RoiCapPolicy) Cap(principal decimal.Decimal) decimal.Decimal {
	return utils.PercentOf(principal, p.MaxPercentage)
}

// Remaining returns what may still be paid, never negative
func (p RoiCapPolicy) Remaining(principal, paid decimal.Decimal) decimal.Decimal {
	left := p.Cap(principal).Sub(paid)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// Clamp limits payout to the remaining allowance. reached is true once this
// payout brings the total to the cap.
func (p RoiCapPolicy) Clamp(principal, paid, payout decimal.Decimal) (amount decimal.Decimal, reached bool) {
	left := p.Remaining(principal, paid)
	if payout.GreaterThanOrEqual(left) {
		return left, true
	}
	return payout, false
}

// CommissionCapPolicy bounds the commission distributed for one payout event
type CommissionCapPolicy struct {
	MaxPercentage decimal.Decimal
}

// DefaultCommissionCapPolicy caps commission at 20% of the payout
func DefaultCommissionCapPolicy() CommissionCapPolicy {
	return CommissionCapPolicy{MaxPercentage: entities.MaxReferralCommissionPercentage}
}

// Budget returns the total commission allowed for payout, floored to cents
func (p CommissionCapPolicy) Budget(payout decimal.Decimal) decimal.Decimal {
	return utils.PercentOf(payout, p.MaxPercentage).RoundDown(2)
}

// Allow grants amount out of left. When amount exceeds left the grant is clamped
// and exhausted reports that no further level may be paid.
func (p CommissionCapPolicy) Allow(left, amount decimal.Decimal) (granted decimal.Decimal, exhausted bool) {
	if amount.GreaterThan(left) {
		return left, true
	}
	return amount, false
}

// DefaultLevelPercentages is the per-level commission table: 8% then 1% down to level 12
func DefaultLevelPercentages() []decimal.Decimal {
	levels := make([]decimal.Decimal, entities.MaxReferralDepth)
	levels[0] = decimal.NewFromInt(8)
	for i := 1; i < len(levels); i++ {
		levels[i] = decimal.NewFromInt(1)
	}
	return levels
}
