package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/infrastructure/models"
	"onec-traders.backend/pkg/utils"
)

// TransactionRepository implements ledger entry operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create creates a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Type:              string(tx.Type),
		Amount:            tx.Amount,
		Status:            string(tx.Status),
		Description:       tx.Description,
		TxHash:            tx.TxHash.Ptr(),
		WithdrawalAddress: tx.WithdrawalAddress.Ptr(),
		CompletedAt:       tx.CompletedAt.Ptr(),
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a ledger entry by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTransactionEntity(&m), nil
}

// ListByUser lists a user's ledger entries with optional type filter and pagination
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, txType *entities.TransactionType, pagination utils.PaginationParams) ([]*entities.Transaction, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txType != nil {
		query = query.Where("type = ?", string(*txType))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	var ms []models.Transaction
	if err := query.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, toTransactionEntity(&ms[i]))
	}
	return out, total, nil
}

// UpdateStatus moves a transaction out of from
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from entities.TransactionStatus, update entities.TransactionStatusUpdate) error {
	if !from.CanTransitionTo(update.Status) {
		return domainerrors.ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":     string(update.Status),
		"updated_at": time.Now(),
	}
	if update.TxHash.Valid {
		updates["tx_hash"] = update.TxHash.String
	}
	if update.CompletedAt.Valid {
		updates["completed_at"] = update.CompletedAt.Time
	}

	result := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainerrors.ErrInvalidTransition
	}
	return nil
}

func toTransactionEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:                m.ID,
		UserID:            m.UserID,
		Type:              entities.TransactionType(m.Type),
		Amount:            m.Amount,
		Status:            entities.TransactionStatus(m.Status),
		Description:       m.Description,
		TxHash:            null.StringFromPtr(m.TxHash),
		WithdrawalAddress: null.StringFromPtr(m.WithdrawalAddress),
		CompletedAt:       null.TimeFromPtr(m.CompletedAt),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
