package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type              string          `gorm:"type:varchar(20);not null;index"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	Description       string          `gorm:"type:text"`
	TxHash            *string         `gorm:"type:varchar(255)"`
	WithdrawalAddress *string         `gorm:"type:varchar(255)"`
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
