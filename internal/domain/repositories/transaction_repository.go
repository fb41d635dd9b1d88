package repositories

import (
	"context"

	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/pkg/utils"
)

// TransactionRepository defines ledger entry operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, txType *entities.TransactionType, pagination utils.PaginationParams) ([]*entities.Transaction, int64, error)
	// UpdateStatus moves a transaction out of from, ErrInvalidTransition when it is no longer there
	UpdateStatus(ctx context.Context, id uuid.UUID, from entities.TransactionStatus, update entities.TransactionStatusUpdate) error
}
