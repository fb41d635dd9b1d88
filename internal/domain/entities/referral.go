package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxReferralDepth is the deepest ancestor level that earns commission
const MaxReferralDepth = 12

// ReferralStatus represents referral edge status
type ReferralStatus string

const (
	ReferralStatusActive   ReferralStatus = "active"
	ReferralStatusInactive ReferralStatus = "inactive"
)

// Referral is a directed edge from a referrer to a user somewhere below them.
// Level is fixed when the edge is created.
type Referral struct {
	ID             uuid.UUID       `json:"id"`
	ReferrerID     uuid.UUID       `json:"referrerId"`
	ReferredUserID uuid.UUID       `json:"referredUserId"`
	Level          int             `json:"level"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	Status         ReferralStatus  `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ReferralCommission is the immutable audit record of one commission payout
type ReferralCommission struct {
	ID           uuid.UUID       `json:"id"`
	ReferralID   uuid.UUID       `json:"referralId"`
	InvestmentID uuid.UUID       `json:"investmentId"`
	Amount       decimal.Decimal `json:"amount"`
	Level        int             `json:"level"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Ancestor is one resolved link in a user's referral chain
type Ancestor struct {
	Level int
	User  *User
}
