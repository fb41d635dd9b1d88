package repositories

import (
	"context"

	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/pkg/utils"
)

// NotificationRepository defines notification operations
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, pagination utils.PaginationParams) ([]*entities.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
