package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"onec-traders.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	createUserTable(t, db)
	createInvestmentTable(t, db)
	createReferralTables(t, db)
	createTransactionTable(t, db)
	createNotificationTable(t, db)
	return db
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		referral_code TEXT NOT NULL UNIQUE,
		referred_by TEXT,
		balance NUMERIC NOT NULL DEFAULT 0,
		total_invested NUMERIC NOT NULL DEFAULT 0,
		total_earnings NUMERIC NOT NULL DEFAULT 0,
		total_withdrawn NUMERIC NOT NULL DEFAULT 0,
		total_deposits NUMERIC NOT NULL DEFAULT 0,
		role TEXT NOT NULL DEFAULT 'user',
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createInvestmentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		roi_percentage NUMERIC NOT NULL,
		daily_return NUMERIC NOT NULL,
		total_returns NUMERIC NOT NULL DEFAULT 0,
		total_roi_earned NUMERIC NOT NULL DEFAULT 0,
		total_commission_earned NUMERIC NOT NULL DEFAULT 0,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		status TEXT NOT NULL,
		last_paid_date DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createReferralTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE referrals (
		id TEXT PRIMARY KEY,
		referrer_id TEXT NOT NULL,
		referred_user_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		total_earnings NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(referrer_id, referred_user_id)
	);`)
	mustExec(t, db, `CREATE TABLE referral_commissions (
		id TEXT PRIMARY KEY,
		referral_id TEXT NOT NULL,
		investment_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		level INTEGER NOT NULL,
		created_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL,
		description TEXT,
		tx_hash TEXT,
		withdrawal_address TEXT,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createNotificationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		related_id TEXT,
		related_type TEXT,
		created_at DATETIME,
		deleted_at DATETIME
	);`)
}

func seedUser(t *testing.T, repo *UserRepository, code, referredBy string, balance string) *entities.User {
	t.Helper()
	now := time.Now().UTC()
	u := &entities.User{
		ID:           uuid.New(),
		Username:     "user_" + code,
		Email:        code + "@example.com",
		PasswordHash: "hash",
		ReferralCode: code,
		ReferredBy:   referredBy,
		Balance:      decimal.RequireFromString(balance),
		Role:         entities.UserRoleUser,
		Status:       entities.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(t.Context(), u))
	return u
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, decimal.RequireFromString(want).StringFixed(2), got.StringFixed(2))
}
