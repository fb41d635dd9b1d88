package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Username       string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash   string          `gorm:"type:varchar(255);not null"`
	ReferralCode   string          `gorm:"type:varchar(16);uniqueIndex;not null"`
	ReferredBy     *string         `gorm:"type:varchar(16);index"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalInvested  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalEarnings  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalDeposits  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Role           string          `gorm:"type:varchar(20);not null;default:'user'"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}
