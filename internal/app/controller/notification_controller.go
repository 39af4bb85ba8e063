package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
)

type NotificationController struct {
	notificationService service.NotificationService
}

func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications lists the caller's notifications
// GET /api/v1/notifications?type=&is_read=&page=&page_size=
func (ctrl *NotificationController) GetNotifications(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	opts := service.NotificationListOptions{
		Page:     parsePositiveInt(c.Query("page"), 1),
		PageSize: parsePositiveInt(c.Query("page_size"), 20),
	}
	if t := c.Query("type"); t != "" {
		nt := model.NotificationType(t)
		opts.Type = &nt
	}
	if v := c.Query("is_read"); v != "" {
		isRead := v == "true"
		opts.IsRead = &isRead
	}

	list, err := ctrl.notificationService.GetNotifications(userID, opts)
	if err != nil {
		log.Error("Failed to list notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetUnreadCount returns the caller's unread notification count
// GET /api/v1/notifications/unread-count
func (ctrl *NotificationController) GetUnreadCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	count, err := ctrl.notificationService.GetUnreadCount(userID)
	if err != nil {
		log.Error("Failed to count unread notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead marks one notification as read
// POST /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkAsRead(c *gin.Context) {
	ctrl.mutate(c, "read", ctrl.notificationService.MarkAsRead, "Notification marked as read")
}

// DeleteNotification removes a notification
// DELETE /api/v1/notifications/:id
func (ctrl *NotificationController) DeleteNotification(c *gin.Context) {
	ctrl.mutate(c, "delete", ctrl.notificationService.DeleteNotification, "Notification deleted")
}

// MarkAllAsRead marks every unread notification of the caller as read
// POST /api/v1/notifications/read-all
func (ctrl *NotificationController) MarkAllAsRead(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := ctrl.notificationService.MarkAllAsRead(userID); err != nil {
		log.Error("Failed to mark all notifications as read", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func (ctrl *NotificationController) mutate(c *gin.Context, action string, fn func(uint, uint) error, success string) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid notification ID")
		return
	}

	if err := fn(userID, uint(notificationID)); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			apperrors.NotFound(c, apperrors.NotificationNotFound, "Notification not found")
		case errors.Is(err, service.ErrNotificationAccessDenied):
			apperrors.Forbidden(c, "This notification belongs to another user")
		default:
			log.Error("Notification update failed", err, map[string]interface{}{
				"notification_id": notificationID,
				"action":          action,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": success})
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
