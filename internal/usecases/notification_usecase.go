package usecases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

// Notifier delivers notifications without reporting failure to the caller
type Notifier interface {
	Notify(ctx context.Context, n *entities.Notification)
}

// Publisher fans a message out to live subscribers
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// NotificationChannel is the pub/sub channel for a user's notifications
func NotificationChannel(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

// NotificationUsecase stores notifications and pushes them to subscribers
type NotificationUsecase struct {
	repo      domainRepos.NotificationRepository
	publisher Publisher
	now       func() time.Time
}

// NewNotificationUsecase creates a notification usecase. publisher may be nil.
func NewNotificationUsecase(repo domainRepos.NotificationRepository, publisher Publisher) *NotificationUsecase {
	return &NotificationUsecase{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Notify persists n and publishes it. Errors are logged only.
func (uc *NotificationUsecase) Notify(ctx context.Context, n *entities.Notification) {
	if n.ID == uuid.Nil {
		n.ID = utils.GenerateUUIDv7()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = uc.now().UTC()
	}
	if n.Type == "" {
		n.Type = entities.NotificationTypeInfo
	}
	n.IsRead = false

	if err := uc.repo.Create(ctx, n); err != nil {
		logger.Error(ctx, "Failed to store notification",
			zap.String("user_id", n.UserID.String()),
			zap.String("title", n.Title),
			zap.Error(err),
		)
		return
	}

	if uc.publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		logger.Error(ctx, "Failed to encode notification", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, NotificationChannel(n.UserID), payload); err != nil {
		logger.Warn(ctx, "Failed to publish notification",
			zap.String("user_id", n.UserID.String()),
			zap.Error(err),
		)
	}
}

// ListNotifications lists a user's notifications
func (uc *NotificationUsecase) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, pagination utils.PaginationParams) ([]*entities.Notification, *utils.PaginationMeta, error) {
	items, total, err := uc.repo.ListByUser(ctx, userID, unreadOnly, pagination)
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, pagination.Page, pagination.Limit)
	return items, &meta, nil
}

// CountUnread counts a user's unread notifications
func (uc *NotificationUsecase) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return uc.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications read
func (uc *NotificationUsecase) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return uc.repo.MarkRead(ctx, id, userID)
}

// DeleteNotification deletes a notification owned by actor, or any notification for an admin
func (uc *NotificationUsecase) DeleteNotification(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) error {
	n, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && n.UserID != actorID {
		return domainerrors.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}
