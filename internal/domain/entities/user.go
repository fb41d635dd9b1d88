package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserStatus represents account status
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// User represents an investor account.
// ReferredBy holds the referral code of the inviting user, empty when none.
type User struct {
	ID             uuid.UUID       `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	ReferralCode   string          `json:"referralCode"`
	ReferredBy     string          `json:"referredBy,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	TotalInvested  decimal.Decimal `json:"totalInvested"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
	TotalDeposits  decimal.Decimal `json:"totalDeposits"`
	Role           UserRole        `json:"role"`
	Status         UserStatus      `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// UserBalanceDelta is applied to a user row as a single atomic increment.
// Zero fields are left untouched.
type UserBalanceDelta struct {
	Balance        decimal.Decimal
	TotalInvested  decimal.Decimal
	TotalEarnings  decimal.Decimal
	TotalWithdrawn decimal.Decimal
	TotalDeposits  decimal.Decimal
}

// IsZero reports whether the delta changes nothing
func (d UserBalanceDelta) IsZero() bool {
	return d.Balance.IsZero() &&
		d.TotalInvested.IsZero() &&
		d.TotalEarnings.IsZero() &&
		d.TotalWithdrawn.IsZero() &&
		d.TotalDeposits.IsZero()
}

// RegisterUserInput represents input for registering a user
type RegisterUserInput struct {
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referralCode"`
}
