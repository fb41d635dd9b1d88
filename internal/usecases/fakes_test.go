package usecases_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/pkg/utils"
)

type txCtxKey struct{}

// memStore is an in-memory ledger implementing every repository the usecases
// need. Units of work are serialised and rolled back on error.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users         map[uuid.UUID]entities.User
	investments   map[uuid.UUID]entities.Investment
	referrals     map[uuid.UUID]entities.Referral
	commissions   []entities.ReferralCommission
	transactions  map[uuid.UUID]entities.Transaction
	notifications map[uuid.UUID]entities.Notification

	failIncrement func(id uuid.UUID) error
	failApply     func(id uuid.UUID) error
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]entities.User{},
		investments:   map[uuid.UUID]entities.Investment{},
		referrals:     map[uuid.UUID]entities.Referral{},
		transactions:  map[uuid.UUID]entities.Transaction{},
		notifications: map[uuid.UUID]entities.Notification{},
	}
}

type memSnapshot struct {
	users         map[uuid.UUID]entities.User
	investments   map[uuid.UUID]entities.Investment
	referrals     map[uuid.UUID]entities.Referral
	commissions   []entities.ReferralCommission
	transactions  map[uuid.UUID]entities.Transaction
	notifications map[uuid.UUID]entities.Notification
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:         cloneMap(s.users),
		investments:   cloneMap(s.investments),
		referrals:     cloneMap(s.referrals),
		commissions:   append([]entities.ReferralCommission(nil), s.commissions...),
		transactions:  cloneMap(s.transactions),
		notifications: cloneMap(s.notifications),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.investments = snap.investments
	s.referrals = snap.referrals
	s.commissions = snap.commissions
	s.transactions = snap.transactions
	s.notifications = snap.notifications
}

// UnitOfWork

type memUnitOfWork struct{ store *memStore }

func (u memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txCtxKey{}) != nil {
		return fn(ctx)
	}
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	snap := u.store.snapshot()
	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

func (u memUnitOfWork) WithLock(ctx context.Context) context.Context { return ctx }

// Users

type memUserRepo struct{ store *memStore }

func (r memUserRepo) Create(_ context.Context, user *entities.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username || u.ReferralCode == user.ReferralCode {
			return domainerrors.ErrAlreadyExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUserRepo) GetByReferralCode(_ context.Context, code string) (*entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domainerrors.ErrNotFound
	}
	for _, u := range s.users {
		if u.ReferralCode == code {
			return &u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUserRepo) IncrementBalances(_ context.Context, id uuid.UUID, d entities.UserBalanceDelta) error {
	s := r.store
	if s.failIncrement != nil {
		if err := s.failIncrement(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if u.Balance.Add(d.Balance).IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	u.Balance = u.Balance.Add(d.Balance)
	u.TotalInvested = u.TotalInvested.Add(d.TotalInvested)
	u.TotalEarnings = u.TotalEarnings.Add(d.TotalEarnings)
	u.TotalWithdrawn = u.TotalWithdrawn.Add(d.TotalWithdrawn)
	u.TotalDeposits = u.TotalDeposits.Add(d.TotalDeposits)
	s.users[id] = u
	return nil
}

// Investments

type memInvestmentRepo struct{ store *memStore }

func (r memInvestmentRepo) Create(_ context.Context, inv *entities.Investment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments[inv.ID] = *inv
	return nil
}

func (r memInvestmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Investment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &inv, nil
}

func (r memInvestmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memInvestmentRepo) ListActiveDue(_ context.Context, day time.Time) ([]*entities.Investment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Investment
	for _, inv := range s.investments {
		if inv.Status == entities.InvestmentStatusActive && !inv.PaidOn(day) {
			out = append(out, &inv)
		}
	}
	return out, nil
}

func (r memInvestmentRepo) ApplyAccrual(_ context.Context, id uuid.UUID, day time.Time, payout decimal.Decimal, complete bool) error {
	s := r.store
	if s.failApply != nil {
		if err := s.failApply(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	switch {
	case !ok:
		return domainerrors.ErrNotFound
	case inv.Status != entities.InvestmentStatusActive:
		return domainerrors.ErrInvestmentNotActive
	case inv.PaidOn(day):
		return domainerrors.ErrAlreadyPaidToday
	}
	inv.TotalReturns = inv.TotalReturns.Add(payout)
	inv.TotalROIEarned = inv.TotalROIEarned.Add(payout)
	inv.LastPaidDate = null.TimeFrom(day)
	if complete {
		inv.Status = entities.InvestmentStatusCompleted
	}
	s.investments[id] = inv
	return nil
}

func (r memInvestmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entities.InvestmentStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if inv.Status != from {
		return domainerrors.ErrInvalidTransition
	}
	inv.Status = to
	s.investments[id] = inv
	return nil
}

func (r memInvestmentRepo) AddCommissionEarned(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	inv.TotalCommissionEarned = inv.TotalCommissionEarned.Add(amount)
	s.investments[id] = inv
	return nil
}

// Referrals

type memReferralRepo struct{ store *memStore }

func (r memReferralRepo) Create(_ context.Context, ref *entities.Referral) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.referrals {
		if e.ReferrerID == ref.ReferrerID && e.ReferredUserID == ref.ReferredUserID {
			return domainerrors.ErrAlreadyExists
		}
	}
	s.referrals[ref.ID] = *ref
	return nil
}

func (r memReferralRepo) FindEdge(_ context.Context, referrerID, referredUserID uuid.UUID) (*entities.Referral, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.referrals {
		if e.ReferrerID == referrerID && e.ReferredUserID == referredUserID {
			return &e, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memReferralRepo) EnsureEdge(ctx context.Context, ref *entities.Referral) (*entities.Referral, error) {
	if err := r.Create(ctx, ref); err != nil && !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return nil, err
	}
	return r.FindEdge(ctx, ref.ReferrerID, ref.ReferredUserID)
}

func (r memReferralRepo) AddEarnings(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.referrals[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	e.TotalEarnings = e.TotalEarnings.Add(amount)
	s.referrals[id] = e
	return nil
}

func (r memReferralRepo) ListByReferrer(_ context.Context, referrerID uuid.UUID) ([]*entities.Referral, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Referral
	for _, e := range s.referrals {
		if e.ReferrerID == referrerID {
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r memReferralRepo) CreateCommission(_ context.Context, c *entities.ReferralCommission) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commissions = append(s.commissions, *c)
	return nil
}

func (r memReferralRepo) ListCommissionsByInvestment(_ context.Context, investmentID uuid.UUID) ([]*entities.ReferralCommission, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.ReferralCommission
	for _, c := range s.commissions {
		if c.InvestmentID == investmentID {
			out = append(out, &c)
		}
	}
	return out, nil
}

// Transactions

type memTransactionRepo struct{ store *memStore }

func (r memTransactionRepo) Create(_ context.Context, tx *entities.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = *tx
	return nil
}

func (r memTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &tx, nil
}

func (r memTransactionRepo) ListByUser(_ context.Context, userID uuid.UUID, txType *entities.TransactionType, p utils.PaginationParams) ([]*entities.Transaction, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID && (txType == nil || tx.Type == *txType) {
			out = append(out, &tx)
		}
	}
	return out, int64(len(out)), nil
}

func (r memTransactionRepo) UpdateStatus(_ context.Context, id uuid.UUID, from entities.TransactionStatus, u entities.TransactionStatusUpdate) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if tx.Status != from {
		return domainerrors.ErrInvalidTransition
	}
	tx.Status = u.Status
	tx.TxHash = u.TxHash
	tx.CompletedAt = u.CompletedAt
	s.transactions[id] = tx
	return nil
}

// Notifications

type memNotificationRepo struct{ store *memStore }

func (r memNotificationRepo) Create(_ context.Context, n *entities.Notification) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (r memNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &n, nil
}

func (r memNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, _ utils.PaginationParams) ([]*entities.Notification, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, &n)
		}
	}
	return out, int64(len(out)), nil
}

func (r memNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return domainerrors.ErrNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (r memNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// Helpers

func (s *memStore) user(id uuid.UUID) entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) investment(id uuid.UUID) entities.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.investments[id]
}

func (s *memStore) commissionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commissions)
}

func (s *memStore) transactionsOf(userID uuid.UUID, txType entities.TransactionType) []entities.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID && tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// addUser stores a user referred by referredBy's code, or a root user when referredBy is nil
func (s *memStore) addUser(code string, referredBy *entities.User, balance string) *entities.User {
	u := entities.User{
		ID:             uuid.New(),
		Username:       "user_" + strings.ToLower(code),
		Email:          strings.ToLower(code) + "@example.com",
		ReferralCode:   code,
		Balance:        decimal.RequireFromString(balance),
		TotalInvested:  decimal.Zero,
		TotalEarnings:  decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		TotalDeposits:  decimal.Zero,
		Role:           entities.UserRoleUser,
		Status:         entities.UserStatusActive,
	}
	if referredBy != nil {
		u.ReferredBy = referredBy.ReferralCode
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return &u
}

// addInvestment stores an active investment started on start
func (s *memStore) addInvestment(owner *entities.User, planType entities.PlanType, amount, daily string, start time.Time) *entities.Investment {
	plan, _ := entities.GetPlan(planType)
	inv := entities.Investment{
		ID:                    uuid.New(),
		UserID:                owner.ID,
		Type:                  planType,
		Amount:                decimal.RequireFromString(amount),
		ROIPercentage:         decimal.RequireFromString("2.00"),
		DailyReturn:           decimal.RequireFromString(daily),
		TotalReturns:          decimal.Zero,
		TotalROIEarned:        decimal.Zero,
		TotalCommissionEarned: decimal.Zero,
		StartDate:             start,
		EndDate:               start.AddDate(0, 0, plan.DurationDays),
		Status:                entities.InvestmentStatusActive,
		CreatedAt:             start,
		UpdatedAt:             start,
	}
	s.mu.Lock()
	s.investments[inv.ID] = inv
	s.mu.Unlock()
	return &inv
}

// chain builds a root user plus n users, each referred by the previous one.
// It returns the users from root to leaf.
func (s *memStore) chain(n int) []*entities.User {
	users := []*entities.User{s.addUser("ROOT0000", nil, "0")}
	for i := 1; i <= n; i++ {
		users = append(users, s.addUser(chainCode(i), users[i-1], "0"))
	}
	return users
}

func chainCode(i int) string {
	return "CHAIN" + string(rune('A'+i/10)) + string(rune('A'+i%10)) + "X"
}

// recordingNotifier captures notifications in memory
type recordingNotifier struct {
	mu    sync.Mutex
	items []entities.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, item *entities.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, *item)
}

func (n *recordingNotifier) titles(userID uuid.UUID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, item := range n.items {
		if item.UserID == userID {
			out = append(out, item.Title)
		}
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
