package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents what moved the balance
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeROI        TransactionType = "roi"
	TransactionTypeReferral   TransactionType = "referral"
	TransactionTypeTask       TransactionType = "task"
)

// TransactionStatus represents transaction status
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// CanTransitionTo reports whether s may move to next. Only pending moves.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s != TransactionStatusPending {
		return false
	}
	switch next {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"userId"`
	Type              TransactionType   `json:"type"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            TransactionStatus `json:"status"`
	Description       string            `json:"description"`
	TxHash            null.String       `json:"txHash"`
	WithdrawalAddress null.String       `json:"withdrawalAddress"`
	CompletedAt       null.Time         `json:"completedAt"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// TransactionStatusUpdate carries the fields written alongside a status change
type TransactionStatusUpdate struct {
	Status      TransactionStatus
	TxHash      null.String
	CompletedAt null.Time
}

// WithdrawalRequestInput represents input for a withdrawal request
type WithdrawalRequestInput struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
}

// WithdrawalReviewInput represents an admin decision on a pending withdrawal
type WithdrawalReviewInput struct {
	Approve bool   `json:"approve"`
	TxHash  string `json:"txHash"`
}

// DepositInput represents an operator-recorded deposit
type DepositInput struct {
	UserID      uuid.UUID       `json:"userId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	TxHash      string          `json:"txHash"`
	Description string          `json:"description"`
}
