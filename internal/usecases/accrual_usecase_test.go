package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/usecases"
)

type accrualHarness struct {
	store       *memStore
	notifier    *recordingNotifier
	observer    *recordingObserver
	distributor *usecases.CommissionDistributor
	accrual     *usecases.AccrualUsecase
}

func newAccrualHarness(t *testing.T) *accrualHarness {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	observer := &recordingObserver{}
	userRepo := memUserRepo{store}
	distributor := usecases.NewCommissionDistributor(
		memUnitOfWork{store},
		userRepo,
		memReferralRepo{store},
		memTransactionRepo{store},
		memInvestmentRepo{store},
		usecases.NewReferralResolver(userRepo),
		notifier,
	).WithObserver(observer)
	accrual := usecases.NewAccrualUsecase(
		memUnitOfWork{store},
		memInvestmentRepo{store},
		userRepo,
		memTransactionRepo{store},
		distributor,
		notifier,
		4,
	).WithObserver(observer)
	return &accrualHarness{store: store, notifier: notifier, observer: observer, distributor: distributor, accrual: accrual}
}

// accrue reloads the investment and accrues it for asOf
func (h *accrualHarness) accrue(t *testing.T, id uuid.UUID, asOf time.Time) (*entities.AccrualResult, error) {
	t.Helper()
	inv := h.store.investment(id)
	return h.accrual.AccrueDaily(context.Background(), &inv, asOf)
}

type recordingObserver struct {
	mu          sync.Mutex
	accruals    int
	matured     int
	errors      int
	commissions map[int]decimal.Decimal
	failures    map[int]int
}

func (o *recordingObserver) ObserveAccrual(_ decimal.Decimal, matured bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accruals++
	if matured {
		o.matured++
	}
}

func (o *recordingObserver) ObserveAccrualError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors++
}

func (o *recordingObserver) ObserveCommission(level int, amount decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.commissions == nil {
		o.commissions = map[int]decimal.Decimal{}
	}
	o.commissions[level] = o.commissions[level].Add(amount)
}

func (o *recordingObserver) ObserveCommissionFailure(level int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failures == nil {
		o.failures = map[int]int{}
	}
	o.failures[level]++
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func TestAccrueDaily_PaysDailyReturnAndCreditsOwner(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))

	res, err := h.accrue(t, inv.ID, day(2026, 1, 2).Add(9*time.Hour))
	require.NoError(t, err)
	assertMoney(t, "10.00", res.PaidAmount)
	assert.False(t, res.Matured)
	assert.Equal(t, entities.InvestmentStatusActive, res.NewStatus)
	assert.Empty(t, res.Commissions)

	stored := h.store.investment(inv.ID)
	assertMoney(t, "10.00", stored.TotalReturns)
	assertMoney(t, "10.00", stored.TotalROIEarned)
	assert.True(t, stored.LastPaidDate.Valid)
	assert.Equal(t, day(2026, 1, 2), stored.LastPaidDate.Time)

	u := h.store.user(owner.ID)
	assertMoney(t, "10.00", u.Balance)
	assertMoney(t, "10.00", u.TotalEarnings)

	roi := h.store.transactionsOf(owner.ID, entities.TransactionTypeROI)
	require.Len(t, roi, 1)
	assertMoney(t, "10.00", roi[0].Amount)
	assert.Equal(t, entities.TransactionStatusCompleted, roi[0].Status)
	assert.True(t, roi[0].CompletedAt.Valid)
}

func TestAccrueDaily_SameDayIsNotPaidTwice(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))

	_, err := h.accrue(t, inv.ID, day(2026, 1, 2).Add(time.Hour))
	require.NoError(t, err)

	_, err = h.accrue(t, inv.ID, day(2026, 1, 2).Add(20*time.Hour))
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyPaidToday)

	// a stale copy that still thinks it is unpaid is rejected by the store
	stale := *inv
	_, err = h.accrual.AccrueDaily(context.Background(), &stale, day(2026, 1, 2))
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyPaidToday)

	assertMoney(t, "10.00", h.store.user(owner.ID).Balance)
	assertMoney(t, "10.00", h.store.investment(inv.ID).TotalReturns)
	assert.Len(t, h.store.transactionsOf(owner.ID, entities.TransactionTypeROI), 1)
}

func TestAccrueDaily_TotalIsCappedAtThreeTimesPrincipal(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "100", "7.00", day(2026, 1, 1))

	start := day(2026, 1, 2)
	for n := 1; n <= 50; n++ {
		current := h.store.investment(inv.ID)
		res, err := h.accrual.AccrueDaily(context.Background(), &current, start.AddDate(0, 0, n-1))
		if n > 43 {
			assert.ErrorIs(t, err, domainerrors.ErrInvestmentNotActive, "day %d", n)
			continue
		}
		require.NoError(t, err, "day %d", n)

		want := decimal.Min(decimal.NewFromInt(int64(7*n)), decimal.NewFromInt(300))
		assertMoney(t, want.StringFixed(2), h.store.investment(inv.ID).TotalReturns, "day %d", n)
		if n == 43 {
			assertMoney(t, "6.00", res.PaidAmount)
			assert.True(t, res.Matured)
			assert.Equal(t, entities.InvestmentStatusCompleted, res.NewStatus)
		}
	}

	stored := h.store.investment(inv.ID)
	assert.Equal(t, entities.InvestmentStatusCompleted, stored.Status)
	assertMoney(t, "300.00", stored.TotalReturns)
	assertMoney(t, "300.00", h.store.user(owner.ID).Balance)
	assert.Contains(t, h.notifier.titles(owner.ID), "Investment completed")
	assert.Equal(t, 1, h.observer.matured)
}

func TestAccrueDaily_MaturesOnEndDate(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2025, 1, 1))

	res, err := h.accrue(t, inv.ID, inv.EndDate.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.Matured)
	assertMoney(t, "10.00", res.PaidAmount)
	assert.Equal(t, entities.InvestmentStatusCompleted, h.store.investment(inv.ID).Status)

	_, err = h.accrue(t, inv.ID, inv.EndDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domainerrors.ErrInvestmentNotActive)
}

func TestAccrueDaily_RejectsTerminalInvestments(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	require.NoError(t, memInvestmentRepo{h.store}.UpdateStatus(context.Background(), inv.ID, entities.InvestmentStatusActive, entities.InvestmentStatusCancelled))

	_, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	assert.ErrorIs(t, err, domainerrors.ErrInvestmentNotActive)
	assertMoney(t, "0.00", h.store.user(owner.ID).Balance)
}

func TestAccrueDaily_RollsBackWhenOwnerCreditFails(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	h.store.failIncrement = func(uuid.UUID) error { return errors.New("disk full") }

	_, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.Error(t, err)

	stored := h.store.investment(inv.ID)
	assert.False(t, stored.LastPaidDate.Valid)
	assertMoney(t, "0.00", stored.TotalReturns)
	assert.Empty(t, h.store.transactionsOf(owner.ID, entities.TransactionTypeROI))

	h.store.failIncrement = nil
	_, err = h.accrue(t, inv.ID, day(2026, 1, 2))
	assert.NoError(t, err)
}

func TestAccrueDaily_TwelveLevelCommission(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(12)
	leaf := users[12]
	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))

	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	require.Len(t, res.Commissions, 12)

	total := decimal.Zero
	for i, c := range res.Commissions {
		assert.Equal(t, i+1, c.Level)
		total = total.Add(c.Amount)
	}
	assertMoney(t, "1.60", res.Commissions[0].Amount)
	for _, c := range res.Commissions[1:] {
		assertMoney(t, "0.20", c.Amount, "level %d", c.Level)
	}
	assertMoney(t, "3.80", total)

	assertMoney(t, "1.60", h.store.user(users[11].ID).Balance)
	assertMoney(t, "0.20", h.store.user(users[0].ID).Balance)
	assertMoney(t, "3.80", h.store.investment(inv.ID).TotalCommissionEarned)
	assert.Equal(t, 12, h.store.commissionCount())

	edge, err := memReferralRepo{h.store}.FindEdge(context.Background(), users[0].ID, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, edge.Level)
	assertMoney(t, "0.20", edge.TotalEarnings)

	ref := h.store.transactionsOf(users[11].ID, entities.TransactionTypeReferral)
	require.Len(t, ref, 1)
	assert.Contains(t, h.notifier.titles(users[11].ID), "Referral commission received")
	assertMoney(t, "1.60", h.observer.commissions[1])
}

func TestAccrueDaily_ChainDeeperThanTwelveStopsAtTwelve(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(15)
	leaf := users[15]
	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))

	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	assert.Len(t, res.Commissions, 12)
	assertMoney(t, "0.00", h.store.user(users[2].ID).Balance)
	assertMoney(t, "0.20", h.store.user(users[3].ID).Balance)
}

func TestAccrueDaily_BrokenLinkTruncatesChain(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(12)
	leaf := users[12]

	// level 4 ancestor points at a code nobody owns
	broken := h.store.user(users[8].ID)
	broken.ReferredBy = "MISSING1"
	h.store.mu.Lock()
	h.store.users[broken.ID] = broken
	h.store.mu.Unlock()

	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	assert.Len(t, res.Commissions, 4)
	assertMoney(t, "2.20", h.store.investment(inv.ID).TotalCommissionEarned)
}

func TestAccrueDaily_CycleInChainIsCutOff(t *testing.T) {
	h := newAccrualHarness(t)
	a := h.store.addUser("CYCLEAAA", nil, "0")
	b := h.store.addUser("CYCLEBBB", a, "0")
	stored := h.store.user(a.ID)
	stored.ReferredBy = b.ReferralCode
	h.store.mu.Lock()
	h.store.users[a.ID] = stored
	h.store.mu.Unlock()

	investor := h.store.addUser("INVESTOR", a, "0")
	inv := h.store.addInvestment(investor, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))

	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	require.Len(t, res.Commissions, 2)
	assertMoney(t, "1.60", h.store.user(a.ID).Balance)
	assertMoney(t, "0.20", h.store.user(b.ID).Balance)
}

func TestAccrueDaily_SelfReferralEarnsNothing(t *testing.T) {
	h := newAccrualHarness(t)
	self := h.store.addUser("SELFSELF", nil, "0")
	stored := h.store.user(self.ID)
	stored.ReferredBy = self.ReferralCode
	h.store.mu.Lock()
	h.store.users[self.ID] = stored
	h.store.mu.Unlock()

	inv := h.store.addInvestment(&stored, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	assert.Empty(t, res.Commissions)
	assertMoney(t, "20.00", h.store.user(self.ID).Balance)
}

func TestAccrueDaily_FailedLevelDoesNotStopOthers(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(3)
	leaf := users[3]
	level2 := users[1].ID
	h.store.failIncrement = func(id uuid.UUID) error {
		if id == level2 {
			return errors.New("row locked")
		}
		return nil
	}

	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)

	require.Len(t, res.Commissions, 2)
	assert.Equal(t, 1, res.Commissions[0].Level)
	assert.Equal(t, 3, res.Commissions[1].Level)
	assert.Equal(t, 1, h.observer.failures[2])

	_, err = memReferralRepo{h.store}.FindEdge(context.Background(), level2, leaf.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assertMoney(t, "1.80", h.store.investment(inv.ID).TotalCommissionEarned)
	assertMoney(t, "20.00", h.store.user(leaf.ID).Balance)
}

func TestAccrueDaily_InactiveEdgeIsSkipped(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(2)
	leaf := users[2]
	require.NoError(t, memReferralRepo{h.store}.Create(context.Background(), &entities.Referral{
		ID:             uuid.New(),
		ReferrerID:     users[1].ID,
		ReferredUserID: leaf.ID,
		Level:          1,
		TotalEarnings:  decimal.Zero,
		Status:         entities.ReferralStatusInactive,
	}))

	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)
	require.Len(t, res.Commissions, 1)
	assert.Equal(t, 2, res.Commissions[0].Level)
	assertMoney(t, "0.00", h.store.user(users[1].ID).Balance)
	assert.Empty(t, h.observer.failures)
}

// staleEdgeRepo misses edges on lookup, as a transaction racing another
// writer of the same pair would
type staleEdgeRepo struct {
	memReferralRepo
}

func (staleEdgeRepo) FindEdge(context.Context, uuid.UUID, uuid.UUID) (*entities.Referral, error) {
	return nil, domainerrors.ErrNotFound
}

func TestCommissionDistributor_ReusesEdgeCreatedConcurrently(t *testing.T) {
	store := newMemStore()
	users := store.chain(1)
	leaf := users[1]
	existing := &entities.Referral{
		ID:             uuid.New(),
		ReferrerID:     users[0].ID,
		ReferredUserID: leaf.ID,
		Level:          1,
		TotalEarnings:  decimal.Zero,
		Status:         entities.ReferralStatusActive,
	}
	require.NoError(t, memReferralRepo{store}.Create(context.Background(), existing))

	userRepo := memUserRepo{store}
	distributor := usecases.NewCommissionDistributor(
		memUnitOfWork{store},
		userRepo,
		staleEdgeRepo{memReferralRepo{store}},
		memTransactionRepo{store},
		memInvestmentRepo{store},
		usecases.NewReferralResolver(userRepo),
		nil,
	)

	inv := store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	records := distributor.Distribute(context.Background(), money("20.00"), inv, leaf)

	require.Len(t, records, 1)
	assert.Equal(t, existing.ID, records[0].ReferralID)
	assertMoney(t, "1.60", store.user(users[0].ID).Balance)
	edges, err := memReferralRepo{store}.ListByReferrer(context.Background(), users[0].ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assertMoney(t, "1.60", edges[0].TotalEarnings)
}

func TestAccrueDaily_CancelAfterPayoutStillPaysCommission(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(3)
	leaf := users[3]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.store.failIncrement = func(id uuid.UUID) error {
		if id == leaf.ID {
			cancel()
		}
		return nil
	}

	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	stored := h.store.investment(inv.ID)
	res, err := h.accrual.AccrueDaily(ctx, &stored, day(2026, 1, 2))
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assertMoney(t, "20.00", res.PaidAmount)
	require.Len(t, res.Commissions, 3)
	assertMoney(t, "1.60", h.store.user(users[2].ID).Balance)
	assertMoney(t, "0.20", h.store.user(users[1].ID).Balance)
	assertMoney(t, "0.20", h.store.user(users[0].ID).Balance)
}

func TestAccrueDaily_MaturityUsesAccrualTimezone(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("OWNER001", nil, "0")
	dubai := time.FixedZone("GST", 4*60*60)
	start := time.Date(2025, 1, 31, 22, 0, 0, 0, time.UTC)
	inv := h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", start)
	require.Equal(t, time.Date(2026, 2, 1, 2, 0, 0, 0, dubai), inv.EndDate.In(dubai))

	res, err := h.accrue(t, inv.ID, time.Date(2026, 1, 31, 12, 0, 0, 0, dubai))
	require.NoError(t, err)
	assert.False(t, res.Matured)
	assert.Equal(t, entities.InvestmentStatusActive, h.store.investment(inv.ID).Status)

	res, err = h.accrue(t, inv.ID, time.Date(2026, 2, 1, 0, 30, 0, 0, dubai))
	require.NoError(t, err)
	assert.True(t, res.Matured)
}

func TestCommissionDistributor_InflatedLevelIsClampedToCap(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(12)
	leaf := users[12]

	levels := usecases.DefaultLevelPercentages()
	levels[0] = decimal.NewFromInt(50)
	h.distributor.WithLevels(levels)

	inv := h.store.addInvestment(leaf, entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	res, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)

	require.Len(t, res.Commissions, 1)
	assertMoney(t, "4.00", res.Commissions[0].Amount)
	assertMoney(t, "4.00", h.store.user(users[11].ID).Balance)
	assertMoney(t, "0.00", h.store.user(users[10].ID).Balance)
}

func TestCommissionDistributor_ZeroPayoutDistributesNothing(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(2)
	inv := h.store.addInvestment(users[2], entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))

	records := h.distributor.Distribute(context.Background(), decimal.Zero, inv, users[2])
	assert.Empty(t, records)
	assert.Equal(t, 0, h.store.commissionCount())
}

func TestRunDailyAccrual_SweepsDueInvestments(t *testing.T) {
	h := newAccrualHarness(t)
	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		owner := h.store.addUser(fmt.Sprintf("SWEEP%03d", i), nil, "0")
		ids = append(ids, h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1)).ID)
	}
	paidOwner := h.store.addUser("PAIDPAID", nil, "0")
	paid := h.store.addInvestment(paidOwner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	_, err := h.accrue(t, paid.ID, day(2026, 1, 2))
	require.NoError(t, err)

	failing := ids[3]
	h.store.failApply = func(id uuid.UUID) error {
		if id == failing {
			return errors.New("constraint violated")
		}
		return nil
	}

	res, err := h.accrual.RunDailyAccrual(context.Background(), day(2026, 1, 2).Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, day(2026, 1, 2), res.AsOf)
	assert.Equal(t, 9, res.Processed)
	assertMoney(t, "90.00", res.Paid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, failing, res.Errors[0].InvestmentID)
	assert.Equal(t, 1, h.observer.errors)

	h.store.failApply = nil
	again, err := h.accrual.RunDailyAccrual(context.Background(), day(2026, 1, 2).Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Processed)
	assert.Empty(t, again.Errors)

	next, err := h.accrual.RunDailyAccrual(context.Background(), day(2026, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 11, next.Processed)
	assertMoney(t, "110.00", next.Paid)
}

func TestRunDailyAccrual_StoreOutageAbortsSweep(t *testing.T) {
	h := newAccrualHarness(t)
	for i := 0; i < 3; i++ {
		owner := h.store.addUser(fmt.Sprintf("DOWN%04d", i), nil, "0")
		h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	}
	h.store.failApply = func(uuid.UUID) error {
		return fmt.Errorf("begin: %w", domainerrors.ErrStoreUnavailable)
	}

	res, err := h.accrual.RunDailyAccrual(context.Background(), day(2026, 1, 2))
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Processed)
	assert.NotEmpty(t, res.Errors)
}

func TestRunDailyAccrual_CancelledContext(t *testing.T) {
	h := newAccrualHarness(t)
	owner := h.store.addUser("CANCEL01", nil, "0")
	h.store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.accrual.RunDailyAccrual(ctx, day(2026, 1, 2))
	assert.ErrorIs(t, err, context.Canceled)
}
