package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/infrastructure/models"
	"onec-traders.backend/pkg/utils"
)

// NotificationRepository implements notification operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	m := &models.Notification{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        string(n.Type),
		IsRead:      n.IsRead,
		RelatedID:   n.RelatedID.Ptr(),
		RelatedType: n.RelatedType.Ptr(),
		CreatedAt:   n.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error) {
	var m models.Notification
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toNotificationEntity(&m), nil
}

// ListByUser lists a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, pagination utils.PaginationParams) ([]*entities.Notification, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	var ms []models.Notification
	if err := query.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Notification, 0, len(ms))
	for i := range ms {
		out = append(out, toNotificationEntity(&ms[i]))
	}
	return out, total, nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks a user's notification read. Marking an already read one is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := GetDB(ctx, r.db).Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
	}
	return nil
}

// Delete soft deletes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Notification{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toNotificationEntity(m *models.Notification) *entities.Notification {
	return &entities.Notification{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Message:     m.Message,
		Type:        entities.NotificationType(m.Type),
		IsRead:      m.IsRead,
		RelatedID:   null.StringFromPtr(m.RelatedID),
		RelatedType: null.StringFromPtr(m.RelatedType),
		CreatedAt:   m.CreatedAt,
	}
}
