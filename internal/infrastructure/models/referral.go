package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Referral struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ReferrerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_edge"`
	ReferredUserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_edge"`
	Level          int             `gorm:"not null"`
	TotalEarnings  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ReferralCommission struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ReferralID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Level        int             `gorm:"not null"`
	CreatedAt    time.Time

	Referral Referral `gorm:"foreignKey:ReferralID"`
}
