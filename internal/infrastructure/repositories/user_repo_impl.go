package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:             user.ID,
		Username:       user.Username,
		Email:          strings.ToLower(user.Email),
		PasswordHash:   user.PasswordHash,
		ReferralCode:   user.ReferralCode,
		Balance:        user.Balance,
		TotalInvested:  user.TotalInvested,
		TotalEarnings:  user.TotalEarnings,
		TotalWithdrawn: user.TotalWithdrawn,
		TotalDeposits:  user.TotalDeposits,
		Role:           string(user.Role),
		Status:         string(user.Status),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	if user.ReferredBy != "" {
		referredBy := user.ReferredBy
		m.ReferredBy = &referredBy
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByReferralCode gets a user by referral code, case-insensitive
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*entities.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domainerrors.ErrNotFound
	}
	return r.first(ctx, "referral_code = ?", code)
}

// IncrementBalances applies delta with a single UPDATE so concurrent credits to
// one user never lose each other.
func (r *UserRepository) IncrementBalances(ctx context.Context, id uuid.UUID, delta entities.UserBalanceDelta) error {
	if delta.IsZero() {
		return nil
	}

	updates := map[string]interface{}{}
	add := func(column string, d decimal.Decimal) {
		if !d.IsZero() {
			updates[column] = gorm.Expr(column+" + ?", d)
		}
	}
	add("balance", delta.Balance)
	add("total_invested", delta.TotalInvested)
	add("total_earnings", delta.TotalEarnings)
	add("total_withdrawn", delta.TotalWithdrawn)
	add("total_deposits", delta.TotalDeposits)

	query := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id)
	if delta.Balance.IsNegative() {
		query = query.Where("balance + ? >= 0", delta.Balance)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainerrors.ErrInsufficientFunds
	}
	return nil
}

func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

func toUserEntity(m *models.User) *entities.User {
	u := &entities.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		ReferralCode:   m.ReferralCode,
		Balance:        m.Balance,
		TotalInvested:  m.TotalInvested,
		TotalEarnings:  m.TotalEarnings,
		TotalWithdrawn: m.TotalWithdrawn,
		TotalDeposits:  m.TotalDeposits,
		Role:           entities.UserRole(m.Role),
		Status:         entities.UserStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ReferredBy != nil {
		u.ReferredBy = *m.ReferredBy
	}
	return u
}
