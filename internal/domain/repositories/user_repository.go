package repositories

import (
	"context"

	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByReferralCode(ctx context.Context, code string) (*entities.User, error)
	// IncrementBalances applies delta atomically at the store. A delta that would
	// leave the balance negative is rejected with ErrInsufficientFunds.
	IncrementBalances(ctx context.Context, id uuid.UUID, delta entities.UserBalanceDelta) error
}
