package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"onec-traders.backend/internal/domain/entities"
)

// ReferralRepository defines referral edge and commission operations
type ReferralRepository interface {
	Create(ctx context.Context, referral *entities.Referral) error
	FindEdge(ctx context.Context, referrerID, referredUserID uuid.UUID) (*entities.Referral, error)
	// EnsureEdge inserts referral unless the pair already has an edge, then returns the stored edge
	EnsureEdge(ctx context.Context, referral *entities.Referral) (*entities.Referral, error)
	AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]*entities.Referral, error)
	CreateCommission(ctx context.Context, commission *entities.ReferralCommission) error
	ListCommissionsByInvestment(ctx context.Context, investmentID uuid.UUID) ([]*entities.ReferralCommission, error)
}
