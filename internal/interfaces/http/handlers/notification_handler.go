package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/internal/interfaces/http/middleware"
	"onec-traders.backend/internal/interfaces/http/response"
	"onec-traders.backend/internal/usecases"
	"onec-traders.backend/pkg/utils"
)

type notificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, pagination utils.PaginationParams) ([]*entities.Notification, *utils.PaginationMeta, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	DeleteNotification(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) error
}

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notificationUsecase notificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationUsecase *usecases.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// ListNotifications lists the current user's notifications
// GET /api/v1/notifications?unread=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	items, meta, err := h.notificationUsecase.ListNotifications(c.Request.Context(), userID, unreadOnly, paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Notification{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"notifications": items,
		"meta":          meta,
	})
}

// UnreadCount returns the number of unread notifications
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// MarkRead marks a notification read
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// DeleteNotification deletes a notification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.DeleteNotification(c.Request.Context(), userID, id, middleware.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Notification deleted"})
}
