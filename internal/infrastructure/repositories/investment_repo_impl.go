package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/infrastructure/models"
)

// InvestmentRepository implements investment data operations
type InvestmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// Create creates a new investment
func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	m := &models.Investment{
		ID:                    inv.ID,
		UserID:                inv.UserID,
		Type:                  string(inv.Type),
		Amount:                inv.Amount,
		ROIPercentage:         inv.ROIPercentage,
		DailyReturn:           inv.DailyReturn,
		TotalReturns:          inv.TotalReturns,
		TotalROIEarned:        inv.TotalROIEarned,
		TotalCommissionEarned: inv.TotalCommissionEarned,
		StartDate:             inv.StartDate,
		EndDate:               inv.EndDate,
		Status:                string(inv.Status),
		LastPaidDate:          inv.LastPaidDate.Ptr(),
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(m).Error
}

// GetByID gets an investment by ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	var m models.Investment
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toInvestmentEntity(&m), nil
}

// ListByUser lists a user's investments, newest first
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	var ms []models.Investment
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return toInvestmentEntities(ms), nil
}

// ListActiveDue lists active investments whose last payout is before day
func (r *InvestmentRepository) ListActiveDue(ctx context.Context, day time.Time) ([]*entities.Investment, error) {
	day = entities.CalendarDay(day)

	var ms []models.Investment
	err := GetDB(ctx, r.db).
		Where("status = ?", string(entities.InvestmentStatusActive)).
		Where("last_paid_date IS NULL OR last_paid_date < ?", day).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toInvestmentEntities(ms), nil
}

// ApplyAccrual is a compare-and-set on (status, last_paid_date)
func (r *InvestmentRepository) ApplyAccrual(ctx context.Context, id uuid.UUID, day time.Time, payout decimal.Decimal, complete bool) error {
	day = entities.CalendarDay(day)

	updates := map[string]interface{}{
		"total_returns":    gorm.Expr("total_returns + ?", payout),
		"total_roi_earned": gorm.Expr("total_roi_earned + ?", payout),
		"last_paid_date":   day,
		"updated_at":       time.Now(),
	}
	if complete {
		updates["status"] = string(entities.InvestmentStatusCompleted)
	}

	result := GetDB(ctx, r.db).Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, string(entities.InvestmentStatusActive)).
		Where("last_paid_date IS NULL OR last_paid_date < ?", day).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		inv, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != entities.InvestmentStatusActive {
			return domainerrors.ErrInvestmentNotActive
		}
		return domainerrors.ErrAlreadyPaidToday
	}
	return nil
}

// UpdateStatus moves an investment from one status to another
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.InvestmentStatus) error {
	result := GetDB(ctx, r.db).Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
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

// AddCommissionEarned records commission generated by this investment's payouts
func (r *InvestmentRepository) AddCommissionEarned(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&models.Investment{}).
		Where("id = ?", id).
		Update("total_commission_earned", gorm.Expr("total_commission_earned + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toInvestmentEntities(ms []models.Investment) []*entities.Investment {
	out := make([]*entities.Investment, 0, len(ms))
	for i := range ms {
		out = append(out, toInvestmentEntity(&ms[i]))
	}
	return out
}

func toInvestmentEntity(m *models.Investment) *entities.Investment {
	return &entities.Investment{
		ID:                    m.ID,
		UserID:                m.UserID,
		Type:                  entities.PlanType(m.Type),
		Amount:                m.Amount,
		ROIPercentage:         m.ROIPercentage,
		DailyReturn:           m.DailyReturn,
		TotalReturns:          m.TotalReturns,
		TotalROIEarned:        m.TotalROIEarned,
		TotalCommissionEarned: m.TotalCommissionEarned,
		StartDate:             m.StartDate,
		EndDate:               m.EndDate,
		Status:                entities.InvestmentStatus(m.Status),
		LastPaidDate:          null.TimeFromPtr(m.LastPaidDate),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
