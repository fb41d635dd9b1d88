package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Investment struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type                  string          `gorm:"type:varchar(20);not null"`
	Amount                decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	ROIPercentage         decimal.Decimal `gorm:"column:roi_percentage;type:numeric(6,2);not null"`
	DailyReturn           decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TotalReturns          decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalROIEarned        decimal.Decimal `gorm:"column:total_roi_earned;type:numeric(20,2);not null;default:0"`
	TotalCommissionEarned decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	StartDate             time.Time       `gorm:"not null"`
	EndDate               time.Time       `gorm:"not null"`
	Status                string          `gorm:"type:varchar(20);not null;index:idx_investments_status_paid"`
	LastPaidDate          *time.Time      `gorm:"type:date;index:idx_investments_status_paid"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	User User `gorm:"foreignKey:UserID"`
}
