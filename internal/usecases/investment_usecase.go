package usecases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

// InvestmentUsecase handles the investment lifecycle outside the daily accrual
type InvestmentUsecase struct {
	uow            domainRepos.UnitOfWork
	investmentRepo domainRepos.InvestmentRepository
	userRepo       domainRepos.UserRepository
	referralRepo   domainRepos.ReferralRepository
	notifier       Notifier
	randFloat      func() float64
	now            func() time.Time
}

// NewInvestmentUsecase creates an investment usecase
func NewInvestmentUsecase(
	uow domainRepos.UnitOfWork,
	investmentRepo domainRepos.InvestmentRepository,
	userRepo domainRepos.UserRepository,
	referralRepo domainRepos.ReferralRepository,
	notifier Notifier,
) *InvestmentUsecase {
	return &InvestmentUsecase{
		uow:            uow,
		investmentRepo: investmentRepo,
		userRepo:       userRepo,
		referralRepo:   referralRepo,
		notifier:       notifier,
		randFloat:      rand.Float64,
		now:            time.Now,
	}
}

// pickROI draws a daily rate uniformly from the plan range, at 2dp
func (uc *InvestmentUsecase) pickROI(plan entities.PlanDefinition) decimal.Decimal {
	span := plan.ROIMax.Sub(plan.ROIMin)
	roi := plan.ROIMin.Add(span.Mul(decimal.NewFromFloat(uc.randFloat()))).Round(2)
	if roi.GreaterThan(plan.ROIMax) {
		return plan.ROIMax
	}
	return roi
}

// CreateInvestment validates the amount against the plan, then debits the
// user's balance and opens the investment in one unit of work. The daily
// return is fixed here and never recomputed.
func (uc *InvestmentUsecase) CreateInvestment(ctx context.Context, userID uuid.UUID, input *entities.CreateInvestmentInput) (*entities.Investment, error) {
	plan, err := entities.GetPlan(input.Type)
	if err != nil {
		return nil, err
	}
	if err := entities.ValidateInvestmentAmount(input.Type, input.Amount); err != nil {
		return nil, err
	}
	amount := utils.RoundCents(input.Amount)

	roi := uc.pickROI(plan)
	now := uc.now().UTC()
	inv := &entities.Investment{
		ID:                    utils.GenerateUUIDv7(),
		UserID:                userID,
		Type:                  plan.Type,
		Amount:                amount,
		ROIPercentage:         roi,
		DailyReturn:           utils.RoundCents(utils.PercentOf(amount, roi)),
		TotalReturns:          decimal.Zero,
		TotalROIEarned:        decimal.Zero,
		TotalCommissionEarned: decimal.Zero,
		StartDate:             now,
		EndDate:               now.AddDate(0, 0, plan.DurationDays),
		Status:                entities.InvestmentStatusActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.IncrementBalances(txCtx, userID, entities.UserBalanceDelta{
			Balance:       amount.Neg(),
			TotalInvested: amount,
		}); err != nil {
			return err
		}
		return uc.investmentRepo.Create(txCtx, inv)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Investment created",
		zap.String("investment_id", inv.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("type", string(inv.Type)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("roi", roi.StringFixed(2)),
	)
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, &entities.Notification{
			UserID:      userID,
			Title:       "Investment started",
			Message:     fmt.Sprintf("Your %s investment of $%s pays $%s daily until %s.", inv.Type, amount.StringFixed(2), inv.DailyReturn.StringFixed(2), inv.EndDate.Format(time.DateOnly)),
			Type:        entities.NotificationTypeInvestment,
			RelatedID:   null.StringFrom(inv.ID.String()),
			RelatedType: null.StringFrom("investment"),
		})
	}
	return inv, nil
}

// GetInvestment returns an investment visible to the actor
func (uc *InvestmentUsecase) GetInvestment(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) (*entities.Investment, error) {
	inv, err := uc.investmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && inv.UserID != actorID {
		return nil, domainerrors.ErrNotFound
	}
	return inv, nil
}

// ListInvestments lists a user's investments
func (uc *InvestmentUsecase) ListInvestments(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	return uc.investmentRepo.ListByUser(ctx, userID)
}

// ListCommissions lists the referral commission an investment has generated
func (uc *InvestmentUsecase) ListCommissions(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) ([]*entities.ReferralCommission, error) {
	if _, err := uc.GetInvestment(ctx, actorID, id, isAdmin); err != nil {
		return nil, err
	}
	return uc.referralRepo.ListCommissionsByInvestment(ctx, id)
}

// CancelInvestment moves an active investment to cancelled. The principal is not refunded.
func (uc *InvestmentUsecase) CancelInvestment(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) (*entities.Investment, error) {
	inv, err := uc.GetInvestment(ctx, actorID, id, isAdmin)
	if err != nil {
		return nil, err
	}
	if inv.Status != entities.InvestmentStatusActive {
		return nil, domainerrors.ErrInvalidTransition
	}

	if err := uc.investmentRepo.UpdateStatus(ctx, id, entities.InvestmentStatusActive, entities.InvestmentStatusCancelled); err != nil {
		return nil, err
	}
	inv.Status = entities.InvestmentStatusCancelled

	logger.Info(ctx, "Investment cancelled",
		zap.String("investment_id", id.String()),
		zap.String("actor_id", actorID.String()),
		zap.Bool("admin", isAdmin),
	)
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, &entities.Notification{
			UserID:      inv.UserID,
			Title:       "Investment cancelled",
			Message:     fmt.Sprintf("Your %s investment of $%s was cancelled.", inv.Type, inv.Amount.StringFixed(2)),
			Type:        entities.NotificationTypeWarning,
			RelatedID:   null.StringFrom(inv.ID.String()),
			RelatedType: null.StringFrom("investment"),
		})
	}
	return inv, nil
}
