package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// InvestmentStatus represents investment status
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s InvestmentStatus) IsTerminal() bool {
	return s == InvestmentStatusCompleted || s == InvestmentStatusCancelled
}

// Investment represents a user's position in a plan.
// DailyReturn is locked at creation and never re-derived from the rate.
type Investment struct {
	ID                    uuid.UUID        `json:"id"`
	UserID                uuid.UUID        `json:"userId"`
	Type                  PlanType         `json:"type"`
	Amount                decimal.Decimal  `json:"amount"`
	ROIPercentage         decimal.Decimal  `json:"roiPercentage"`
	DailyReturn           decimal.Decimal  `json:"dailyReturn"`
	TotalReturns          decimal.Decimal  `json:"totalReturns"`
	TotalROIEarned        decimal.Decimal  `json:"totalRoiEarned"`
	TotalCommissionEarned decimal.Decimal  `json:"totalCommissionEarned"`
	StartDate             time.Time        `json:"startDate"`
	EndDate               time.Time        `json:"endDate"`
	Status                InvestmentStatus `json:"status"`
	LastPaidDate          null.Time        `json:"lastPaidDate"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

// PaidOn reports whether the investment was already credited on day (or later)
func (i *Investment) PaidOn(day time.Time) bool {
	if !i.LastPaidDate.Valid {
		return false
	}
	return !CalendarDay(i.LastPaidDate.Time).Before(CalendarDay(day))
}

// CreateInvestmentInput represents input for creating an investment
type CreateInvestmentInput struct {
	Type   PlanType        `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AccrualResult is the outcome of one daily accrual for one investment
type AccrualResult struct {
	InvestmentID uuid.UUID            `json:"investmentId"`
	PaidAmount   decimal.Decimal      `json:"paidAmount"`
	NewStatus    InvestmentStatus     `json:"newStatus"`
	Matured      bool                 `json:"matured"`
	Commissions  []ReferralCommission `json:"commissions,omitempty"`
}

// AccrualError records a failed accrual inside a sweep
type AccrualError struct {
	InvestmentID uuid.UUID `json:"investmentId"`
	Error        string    `json:"error"`
}

// AccrualRunResult summarises one daily sweep
type AccrualRunResult struct {
	AsOf      time.Time       `json:"asOf"`
	Processed int             `json:"processed"`
	Paid      decimal.Decimal `json:"paid"`
	Matured   int             `json:"matured"`
	Skipped   int             `json:"skipped"`
	Errors    []AccrualError  `json:"errors"`
}

// CalendarDay truncates t to midnight UTC of its calendar date in t's own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
