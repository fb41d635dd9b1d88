package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

// errEdgeInactive marks a level skipped because its referral edge is inactive
var errEdgeInactive = errors.New("referral edge inactive")

// CommissionDistributor pays referral commission up the ancestor chain for one payout
type CommissionDistributor struct {
	uow            domainRepos.UnitOfWork
	userRepo       domainRepos.UserRepository
	referralRepo   domainRepos.ReferralRepository
	txRepo         domainRepos.TransactionRepository
	investmentRepo domainRepos.InvestmentRepository
	resolver       *ReferralResolver
	notifier       Notifier
	observer       AccrualObserver
	levels         []decimal.Decimal
	capPolicy      CommissionCapPolicy
	now            func() time.Time
}

// NewCommissionDistributor creates a distributor with the default level table and cap
func NewCommissionDistributor(
	uow domainRepos.UnitOfWork,
	userRepo domainRepos.UserRepository,
	referralRepo domainRepos.ReferralRepository,
	txRepo domainRepos.TransactionRepository,
	investmentRepo domainRepos.InvestmentRepository,
	resolver *ReferralResolver,
	notifier Notifier,
) *CommissionDistributor {
	return &CommissionDistributor{
		uow:            uow,
		userRepo:       userRepo,
		referralRepo:   referralRepo,
		txRepo:         txRepo,
		investmentRepo: investmentRepo,
		resolver:       resolver,
		notifier:       notifier,
		observer:       nopObserver{},
		levels:         DefaultLevelPercentages(),
		capPolicy:      DefaultCommissionCapPolicy(),
		now:            time.Now,
	}
}

// WithLevels replaces the per-level percentage table
func (d *CommissionDistributor) WithLevels(levels []decimal.Decimal) *CommissionDistributor {
	d.levels = levels
	return d
}

// WithCapPolicy replaces the per-event commission cap
func (d *CommissionDistributor) WithCapPolicy(p CommissionCapPolicy) *CommissionDistributor {
	d.capPolicy = p
	return d
}

// WithObserver sets the metrics observer
func (d *CommissionDistributor) WithObserver(o AccrualObserver) *CommissionDistributor {
	if o != nil {
		d.observer = o
	}
	return d
}

func (d *CommissionDistributor) levelPercentage(level int) decimal.Decimal {
	if level < 1 || level > len(d.levels) {
		return decimal.Zero
	}
	return d.levels[level-1]
}

// Distribute credits each resolved ancestor of payer with its share of payout.
// Every ancestor is credited in its own unit of work; a failure is logged and the
// next level is still attempted. It returns the commissions that were committed.
func (d *CommissionDistributor) Distribute(ctx context.Context, payout decimal.Decimal, inv *entities.Investment, payer *entities.User) []entities.ReferralCommission {
	if !payout.IsPositive() {
		return nil
	}

	budget := d.capPolicy.Budget(payout)
	var records []entities.ReferralCommission

	for ancestor := range d.resolver.Ancestors(ctx, payer) {
		share := utils.RoundCents(utils.PercentOf(payout, d.levelPercentage(ancestor.Level)))
		amount, exhausted := d.capPolicy.Allow(budget, share)

		if amount.IsPositive() {
			record, err := d.credit(ctx, ancestor, amount, inv, payer)
			switch {
			case errors.Is(err, errEdgeInactive):
				logger.Debug(ctx, "Skipping inactive referral edge",
					zap.String("investment_id", inv.ID.String()),
					zap.String("ancestor_id", ancestor.User.ID.String()),
					zap.Int("level", ancestor.Level),
				)
				continue
			case err != nil:
				d.observer.ObserveCommissionFailure(ancestor.Level)
				logger.Error(ctx, "Failed to credit referral commission",
					zap.String("investment_id", inv.ID.String()),
					zap.String("ancestor_id", ancestor.User.ID.String()),
					zap.Int("level", ancestor.Level),
					zap.String("amount", amount.StringFixed(2)),
					zap.Error(err),
				)
			default:
				budget = budget.Sub(amount)
				records = append(records, *record)
				d.observer.ObserveCommission(ancestor.Level, amount)
				d.notifyAncestor(ctx, ancestor, record, payer)
			}
		}

		if exhausted {
			logger.Info(ctx, "Referral commission cap reached",
				zap.String("investment_id", inv.ID.String()),
				zap.Int("level", ancestor.Level),
			)
			break
		}
	}

	return records
}

func (d *CommissionDistributor) credit(ctx context.Context, ancestor entities.Ancestor, amount decimal.Decimal, inv *entities.Investment, payer *entities.User) (*entities.ReferralCommission, error) {
	var record *entities.ReferralCommission

	err := d.uow.Do(ctx, func(txCtx context.Context) error {
		now := d.now().UTC()

		edge, err := d.referralRepo.FindEdge(txCtx, ancestor.User.ID, payer.ID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			edge, err = d.referralRepo.EnsureEdge(txCtx, &entities.Referral{
				ID:             utils.GenerateUUIDv7(),
				ReferrerID:     ancestor.User.ID,
				ReferredUserID: payer.ID,
				Level:          ancestor.Level,
				TotalEarnings:  decimal.Zero,
				Status:         entities.ReferralStatusActive,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}
		if err != nil {
			return fmt.Errorf("referral edge: %w", err)
		}
		if edge.Status != entities.ReferralStatusActive {
			return errEdgeInactive
		}

		if err := d.userRepo.IncrementBalances(txCtx, ancestor.User.ID, entities.UserBalanceDelta{
			Balance:       amount,
			TotalEarnings: amount,
		}); err != nil {
			return fmt.Errorf("credit ancestor: %w", err)
		}
		if err := d.referralRepo.AddEarnings(txCtx, edge.ID, amount); err != nil {
			return fmt.Errorf("edge earnings: %w", err)
		}
		if err := d.investmentRepo.AddCommissionEarned(txCtx, inv.ID, amount); err != nil {
			return fmt.Errorf("investment commission: %w", err)
		}

		record = &entities.ReferralCommission{
			ID:           utils.GenerateUUIDv7(),
			ReferralID:   edge.ID,
			InvestmentID: inv.ID,
			Amount:       amount,
			Level:        ancestor.Level,
			CreatedAt:    now,
		}
		if err := d.referralRepo.CreateCommission(txCtx, record); err != nil {
			return fmt.Errorf("commission record: %w", err)
		}

		return d.txRepo.Create(txCtx, &entities.Transaction{
			ID:          utils.GenerateUUIDv7(),
			UserID:      ancestor.User.ID,
			Type:        entities.TransactionTypeReferral,
			Amount:      amount,
			Status:      entities.TransactionStatusCompleted,
			Description: fmt.Sprintf("Level %d referral commission from %s", ancestor.Level, payer.Username),
			CompletedAt: null.TimeFrom(now),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (d *CommissionDistributor) notifyAncestor(ctx context.Context, ancestor entities.Ancestor, record *entities.ReferralCommission, payer *entities.User) {
	if d.notifier == nil {
		return
	}
	d.notifier.Notify(ctx, &entities.Notification{
		UserID:      ancestor.User.ID,
		Title:       "Referral commission received",
		Message:     fmt.Sprintf("You earned $%s from a level %d referral (%s).", record.Amount.StringFixed(2), record.Level, payer.Username),
		Type:        entities.NotificationTypeInvestment,
		RelatedID:   null.StringFrom(record.ReferralID.String()),
		RelatedType: null.StringFrom("referral"),
	})
}
