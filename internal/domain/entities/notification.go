package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// NotificationType represents notification category
type NotificationType string

const (
	NotificationTypeInfo       NotificationType = "info"
	NotificationTypeSuccess    NotificationType = "success"
	NotificationTypeWarning    NotificationType = "warning"
	NotificationTypeError      NotificationType = "error"
	NotificationTypeTask       NotificationType = "task"
	NotificationTypeInvestment NotificationType = "investment"
	NotificationTypeSystem     NotificationType = "system"
)

// Notification is created unread and may only be marked read or deleted
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"userId"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	IsRead      bool             `json:"isRead"`
	RelatedID   null.String      `json:"relatedId"`
	RelatedType null.String      `json:"relatedType"`
	CreatedAt   time.Time        `json:"createdAt"`
}
