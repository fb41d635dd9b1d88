package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Message     string    `gorm:"type:text;not null"`
	Type        string    `gorm:"type:varchar(20);not null"`
	IsRead      bool      `gorm:"not null;default:false"`
	RelatedID   *string   `gorm:"type:varchar(64)"`
	RelatedType *string   `gorm:"type:varchar(32)"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
