package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

// DefaultAccrualWorkers bounds concurrent accruals in a sweep
const DefaultAccrualWorkers = 8

// AccrualUsecase applies daily ROI to investments
type AccrualUsecase struct {
	uow            domainRepos.UnitOfWork
	investmentRepo domainRepos.InvestmentRepository
	userRepo       domainRepos.UserRepository
	txRepo         domainRepos.TransactionRepository
	distributor    *CommissionDistributor
	notifier       Notifier
	observer       AccrualObserver
	roiPolicy      RoiCapPolicy
	workers        int
	now            func() time.Time
}

// NewAccrualUsecase creates an accrual usecase
func NewAccrualUsecase(
	uow domainRepos.UnitOfWork,
	investmentRepo domainRepos.InvestmentRepository,
	userRepo domainRepos.UserRepository,
	txRepo domainRepos.TransactionRepository,
	distributor *CommissionDistributor,
	notifier Notifier,
	workers int,
) *AccrualUsecase {
	if workers <= 0 {
		workers = DefaultAccrualWorkers
	}
	return &AccrualUsecase{
		uow:            uow,
		investmentRepo: investmentRepo,
		userRepo:       userRepo,
		txRepo:         txRepo,
		distributor:    distributor,
		notifier:       notifier,
		observer:       nopObserver{},
		roiPolicy:      DefaultRoiCapPolicy(),
		workers:        workers,
		now:            time.Now,
	}
}

// WithObserver sets the metrics observer
func (uc *AccrualUsecase) WithObserver(o AccrualObserver) *AccrualUsecase {
	if o != nil {
		uc.observer = o
	}
	return uc
}

// AccrueDaily pays one day of ROI for inv on the calendar day of asOf, then
// distributes referral commission on that payout. The investment row, the
// owner's balance and the ROI transaction commit together; commission is
// applied afterwards, one ancestor at a time.
func (uc *AccrualUsecase) AccrueDaily(ctx context.Context, inv *entities.Investment, asOf time.Time) (*entities.AccrualResult, error) {
	if inv.Status != entities.InvestmentStatusActive {
		return nil, domainerrors.ErrInvestmentNotActive
	}
	day := entities.CalendarDay(asOf)
	if inv.PaidOn(day) {
		return nil, domainerrors.ErrAlreadyPaidToday
	}

	matured := !day.Before(entities.CalendarDay(inv.EndDate.In(asOf.Location())))
	payout, capReached := uc.roiPolicy.Clamp(inv.Amount, inv.TotalReturns, inv.DailyReturn)
	matured = matured || capReached

	owner, err := uc.userRepo.GetByID(ctx, inv.UserID)
	if err != nil {
		return nil, fmt.Errorf("load investment owner: %w", err)
	}

	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.investmentRepo.ApplyAccrual(txCtx, inv.ID, day, payout, matured); err != nil {
			return err
		}
		if !payout.IsPositive() {
			return nil
		}
		if err := uc.userRepo.IncrementBalances(txCtx, owner.ID, entities.UserBalanceDelta{
			Balance:       payout,
			TotalEarnings: payout,
		}); err != nil {
			return fmt.Errorf("credit investor: %w", err)
		}

		now := uc.now().UTC()
		return uc.txRepo.Create(txCtx, &entities.Transaction{
			ID:          utils.GenerateUUIDv7(),
			UserID:      owner.ID,
			Type:        entities.TransactionTypeROI,
			Amount:      payout,
			Status:      entities.TransactionStatusCompleted,
			Description: fmt.Sprintf("Daily ROI on %s investment for %s", inv.Type, day.Format(time.DateOnly)),
			CompletedAt: null.TimeFrom(now),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	inv.TotalReturns = inv.TotalReturns.Add(payout)
	inv.TotalROIEarned = inv.TotalROIEarned.Add(payout)
	inv.LastPaidDate = null.TimeFrom(day)
	if matured {
		inv.Status = entities.InvestmentStatusCompleted
	}

	result := &entities.AccrualResult{
		InvestmentID: inv.ID,
		PaidAmount:   payout,
		NewStatus:    inv.Status,
		Matured:      matured,
	}
	uc.observer.ObserveAccrual(payout, matured)

	// Payout is committed; commission runs to completion even if ctx is cancelled.
	committed := context.WithoutCancel(ctx)
	if uc.distributor != nil {
		result.Commissions = uc.distributor.Distribute(committed, payout, inv, owner)
	}
	if matured {
		uc.notifyMatured(committed, inv)
	}

	return result, nil
}

// RunDailyAccrual accrues every active investment not yet paid for the calendar
// day of asOf. Investments run concurrently on a bounded pool. Per-investment
// failures are collected; a store outage stops the sweep and is returned.
func (uc *AccrualUsecase) RunDailyAccrual(ctx context.Context, asOf time.Time) (*entities.AccrualRunResult, error) {
	day := entities.CalendarDay(asOf)
	ctx = logger.WithRunID(ctx, day.Format(time.DateOnly))

	result := &entities.AccrualRunResult{
		AsOf:   day,
		Paid:   decimal.Zero,
		Errors: []entities.AccrualError{},
	}

	due, err := uc.investmentRepo.ListActiveDue(ctx, day)
	if err != nil {
		return result, fmt.Errorf("list due investments: %w", err)
	}
	logger.Info(ctx, "Daily accrual started", zap.Int("due", len(due)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for _, inv := range due {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := uc.AccrueDaily(gctx, inv, asOf)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				result.Processed++
				result.Paid = result.Paid.Add(res.PaidAmount)
				if res.Matured {
					result.Matured++
				}
				return nil
			case errors.Is(err, domainerrors.ErrAlreadyPaidToday), errors.Is(err, domainerrors.ErrInvestmentNotActive):
				result.Skipped++
				return nil
			}

			uc.observer.ObserveAccrualError()
			result.Errors = append(result.Errors, entities.AccrualError{InvestmentID: inv.ID, Error: err.Error()})
			logger.Error(gctx, "Accrual failed",
				zap.String("investment_id", inv.ID.String()),
				zap.String("user_id", inv.UserID.String()),
				zap.Error(err),
			)
			if errors.Is(err, domainerrors.ErrStoreUnavailable) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Daily accrual aborted", zap.Error(err))
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	logger.Info(ctx, "Daily accrual finished",
		zap.Int("processed", result.Processed),
		zap.String("paid", result.Paid.StringFixed(2)),
		zap.Int("matured", result.Matured),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (uc *AccrualUsecase) notifyMatured(ctx context.Context, inv *entities.Investment) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, &entities.Notification{
		UserID:      inv.UserID,
		Title:       "Investment completed",
		Message:     fmt.Sprintf("Your %s investment of $%s has matured with $%s paid in total.", inv.Type, inv.Amount.StringFixed(2), inv.TotalReturns.StringFixed(2)),
		Type:        entities.NotificationTypeSuccess,
		RelatedID:   null.StringFrom(inv.ID.String()),
		RelatedType: null.StringFrom("investment"),
	})
}
