package usecases_test

import (
	"context"
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

func newInvestmentUsecase(store *memStore, notifier usecases.Notifier) *usecases.InvestmentUsecase {
	return usecases.NewInvestmentUsecase(
		memUnitOfWork{store},
		memInvestmentRepo{store},
		memUserRepo{store},
		memReferralRepo{store},
		notifier,
	)
}

func TestCreateInvestment_OilPlan(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	user := store.addUser("INVESTOR", nil, "1000")
	uc := newInvestmentUsecase(store, notifier)

	start := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	usecases.SetInvestmentSource(uc, func() time.Time { return start }, func() float64 { return 0.5 })

	inv, err := uc.CreateInvestment(context.Background(), user.ID, &entities.CreateInvestmentInput{
		Type:   entities.PlanTypeOil,
		Amount: money("500"),
	})
	require.NoError(t, err)

	stored, err := memInvestmentRepo{store}.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assertMoney(t, "2.00", stored.ROIPercentage)
	assertMoney(t, "10.00", stored.DailyReturn)
	assert.True(t, stored.DailyReturn.GreaterThanOrEqual(money("7.50")))
	assert.True(t, stored.DailyReturn.LessThanOrEqual(money("12.50")))
	assert.Equal(t, start.AddDate(0, 0, 365), stored.EndDate)
	assert.Equal(t, 365*24*time.Hour, stored.EndDate.Sub(stored.StartDate))
	assert.Equal(t, entities.InvestmentStatusActive, stored.Status)
	assertMoney(t, "0.00", stored.TotalReturns)

	u := store.user(user.ID)
	assertMoney(t, "500.00", u.Balance)
	assertMoney(t, "500.00", u.TotalInvested)
	assert.Contains(t, notifier.titles(user.ID), "Investment started")
}

func TestCreateInvestment_ROIStaysInsidePlanRange(t *testing.T) {
	store := newMemStore()
	user := store.addUser("INVESTOR", nil, "100000")
	uc := newInvestmentUsecase(store, nil)

	for _, r := range []float64{0, 0.25, 0.999999} {
		usecases.SetInvestmentSource(uc, time.Now, func() float64 { return r })
		inv, err := uc.CreateInvestment(context.Background(), user.ID, &entities.CreateInvestmentInput{
			Type:   entities.PlanTypeShares,
			Amount: money("1000"),
		})
		require.NoError(t, err)
		assert.True(t, inv.ROIPercentage.GreaterThanOrEqual(money("1.5")), r)
		assert.True(t, inv.ROIPercentage.LessThanOrEqual(money("2.5")), r)
		assert.True(t, inv.DailyReturn.GreaterThanOrEqual(money("15.00")), r)
		assert.True(t, inv.DailyReturn.LessThanOrEqual(money("25.00")), r)
	}
}

func TestCreateInvestment_RejectsBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name   string
		input  entities.CreateInvestmentInput
		target error
	}{
		{"below minimum", entities.CreateInvestmentInput{Type: entities.PlanTypeOil, Amount: money("50")}, domainerrors.ErrOutOfRange},
		{"above maximum", entities.CreateInvestmentInput{Type: entities.PlanTypeOil, Amount: money("5000.01")}, domainerrors.ErrOutOfRange},
		{"unknown plan", entities.CreateInvestmentInput{Type: "gold", Amount: money("500")}, domainerrors.ErrUnknownPlanType},
		{"insufficient balance", entities.CreateInvestmentInput{Type: entities.PlanTypeAI, Amount: money("20000")}, domainerrors.ErrInsufficientFunds},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			user := store.addUser("INVESTOR", nil, "1000")
			uc := newInvestmentUsecase(store, nil)

			_, err := uc.CreateInvestment(context.Background(), user.ID, &tc.input)
			assert.ErrorIs(t, err, tc.target)

			list, err := uc.ListInvestments(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Empty(t, list)
			assertMoney(t, "1000.00", store.user(user.ID).Balance)
		})
	}
}

func TestCreateInvestment_BoundsAreInclusive(t *testing.T) {
	store := newMemStore()
	user := store.addUser("INVESTOR", nil, "10000")
	uc := newInvestmentUsecase(store, nil)

	for _, amount := range []string{"100", "5000"} {
		_, err := uc.CreateInvestment(context.Background(), user.ID, &entities.CreateInvestmentInput{
			Type:   entities.PlanTypeOil,
			Amount: money(amount),
		})
		assert.NoError(t, err, amount)
	}
	assertMoney(t, "4900.00", store.user(user.ID).Balance)
}

func TestGetInvestment_HidesOtherUsersInvestments(t *testing.T) {
	store := newMemStore()
	owner := store.addUser("OWNER001", nil, "0")
	other := store.addUser("OTHER001", nil, "0")
	inv := store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	uc := newInvestmentUsecase(store, nil)

	got, err := uc.GetInvestment(context.Background(), owner.ID, inv.ID, false)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = uc.GetInvestment(context.Background(), other.ID, inv.ID, false)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = uc.GetInvestment(context.Background(), other.ID, inv.ID, true)
	assert.NoError(t, err)

	_, err = uc.GetInvestment(context.Background(), owner.ID, uuid.New(), false)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListCommissions_ForInvestment(t *testing.T) {
	h := newAccrualHarness(t)
	users := h.store.chain(2)
	inv := h.store.addInvestment(users[2], entities.PlanTypeOil, "1000", "20.00", day(2026, 1, 1))
	_, err := h.accrue(t, inv.ID, day(2026, 1, 2))
	require.NoError(t, err)

	uc := newInvestmentUsecase(h.store, nil)
	list, err := uc.ListCommissions(context.Background(), users[2].ID, inv.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	total := decimal.Zero
	for _, c := range list {
		total = total.Add(c.Amount)
	}
	assertMoney(t, "1.80", total)

	_, err = uc.ListCommissions(context.Background(), users[0].ID, inv.ID, false)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCancelInvestment(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	owner := store.addUser("OWNER001", nil, "0")
	other := store.addUser("OTHER001", nil, "0")
	inv := store.addInvestment(owner, entities.PlanTypeOil, "500", "10.00", day(2026, 1, 1))
	uc := newInvestmentUsecase(store, notifier)

	_, err := uc.CancelInvestment(context.Background(), other.ID, inv.ID, false)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := uc.CancelInvestment(context.Background(), owner.ID, inv.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusCancelled, got.Status)
	assert.Equal(t, entities.InvestmentStatusCancelled, store.investment(inv.ID).Status)
	assertMoney(t, "0.00", store.user(owner.ID).Balance)
	assert.Contains(t, notifier.titles(owner.ID), "Investment cancelled")

	_, err = uc.CancelInvestment(context.Background(), owner.ID, inv.ID, true)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}
