package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/infrastructure/models"
)

// ReferralRepository implements referral edge and commission operations
type ReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func toReferralModel(referral *entities.Referral) *models.Referral {
	return &models.Referral{
		ID:             referral.ID,
		ReferrerID:     referral.ReferrerID,
		ReferredUserID: referral.ReferredUserID,
		Level:          referral.Level,
		TotalEarnings:  referral.TotalEarnings,
		Status:         string(referral.Status),
		CreatedAt:      referral.CreatedAt,
		UpdatedAt:      referral.UpdatedAt,
	}
}

// Create creates a referral edge
func (r *ReferralRepository) Create(ctx context.Context, referral *entities.Referral) error {
	if err := GetDB(ctx, r.db).Create(toReferralModel(referral)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindEdge gets the edge between a referrer and a referred user
func (r *ReferralRepository) FindEdge(ctx context.Context, referrerID, referredUserID uuid.UUID) (*entities.Referral, error) {
	var m models.Referral
	err := GetDB(ctx, r.db).
		Where("referrer_id = ? AND referred_user_id = ?", referrerID, referredUserID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toReferralEntity(&m), nil
}

// EnsureEdge inserts the edge with ON CONFLICT DO NOTHING so a concurrent
// insert of the same pair does not abort the surrounding transaction
func (r *ReferralRepository) EnsureEdge(ctx context.Context, referral *entities.Referral) (*entities.Referral, error) {
	err := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "referrer_id"}, {Name: "referred_user_id"}},
			DoNothing: true,
		}).
		Create(toReferralModel(referral)).Error
	if err != nil {
		return nil, err
	}
	return r.FindEdge(ctx, referral.ReferrerID, referral.ReferredUserID)
}

// AddEarnings increments the commission paid through an edge
func (r *ReferralRepository) AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&models.Referral{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByReferrer lists a referrer's downline edges ordered by level
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]*entities.Referral, error) {
	var ms []models.Referral
	err := GetDB(ctx, r.db).
		Where("referrer_id = ?", referrerID).
		Order("level ASC, created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Referral, 0, len(ms))
	for i := range ms {
		out = append(out, toReferralEntity(&ms[i]))
	}
	return out, nil
}

// CreateCommission writes a commission audit record
func (r *ReferralRepository) CreateCommission(ctx context.Context, c *entities.ReferralCommission) error {
	m := &models.ReferralCommission{
		ID:           c.ID,
		ReferralID:   c.ReferralID,
		InvestmentID: c.InvestmentID,
		Amount:       c.Amount,
		Level:        c.Level,
		CreatedAt:    c.CreatedAt,
	}
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(m).Error
}

// ListCommissionsByInvestment lists commission records generated by an investment
func (r *ReferralRepository) ListCommissionsByInvestment(ctx context.Context, investmentID uuid.UUID) ([]*entities.ReferralCommission, error) {
	var ms []models.ReferralCommission
	err := GetDB(ctx, r.db).
		Where("investment_id = ?", investmentID).
		Order("created_at ASC, level ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entities.ReferralCommission, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.ReferralCommission{
			ID:           m.ID,
			ReferralID:   m.ReferralID,
			InvestmentID: m.InvestmentID,
			Amount:       m.Amount,
			Level:        m.Level,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}

func toReferralEntity(m *models.Referral) *entities.Referral {
	return &entities.Referral{
		ID:             m.ID,
		ReferrerID:     m.ReferrerID,
		ReferredUserID: m.ReferredUserID,
		Level:          m.Level,
		TotalEarnings:  m.TotalEarnings,
		Status:         entities.ReferralStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
