package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"onec-traders.backend/internal/domain/entities"
)

// InvestmentRepository defines investment data operations
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entities.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error)
	// ListActiveDue returns active investments not yet paid for day
	ListActiveDue(ctx context.Context, day time.Time) ([]*entities.Investment, error)
	// ApplyAccrual records one payout for day. It only applies while the
	// investment is active and unpaid for day, otherwise ErrAlreadyPaidToday.
	ApplyAccrual(ctx context.Context, id uuid.UUID, day time.Time, payout decimal.Decimal, complete bool) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.InvestmentStatus) error
	AddCommissionEarned(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}
