package service

import (
	"errors"
	"fmt"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/websocket"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationAccessDenied = errors.New("no permission for this notification")
)

type NotificationListOptions struct {
	Type     *model.NotificationType
	IsRead   *bool
	Page     int
	PageSize int
}

type NotificationList struct {
	Notifications []model.Notification `json:"notifications"`
	TotalCount    int64                `json:"total_count"`
	UnreadCount   int64                `json:"unread_count"`
}

type NotificationService interface {
	GetNotifications(userID uint, opts NotificationListOptions) (*NotificationList, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(userID, notificationID uint) error
	MarkAllAsRead(userID uint) error
	DeleteNotification(userID, notificationID uint) error

	// Event helpers. Failures are logged, never propagated: a missed
	// notification must not fail the mutation that triggered it.
	NotifyConnectionRequested(conn *model.Connection)
	NotifyConnectionAccepted(conn *model.Connection)
	NotifyConnectionDeclined(conn *model.Connection)
	NotifyDocumentReviewed(doc *model.VerificationDocument, approved bool, reason string)
	NotifyMilestoneEvent(milestone *model.Milestone, recipientID uint, event model.NotificationType)
}

type notificationService struct {
	repo         repository.NotificationRepository
	businessRepo repository.BusinessRepository
	hub          *websocket.Hub
}

func NewNotificationService(
	repo repository.NotificationRepository,
	businessRepo repository.BusinessRepository,
	hub *websocket.Hub,
) NotificationService {
	return &notificationService{
		repo:         repo,
		businessRepo: businessRepo,
		hub:          hub,
	}
}

func (s *notificationService) GetNotifications(userID uint, opts NotificationListOptions) (*NotificationList, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 || opts.PageSize > 100 {
		opts.PageSize = 20
	}

	offset := (opts.Page - 1) * opts.PageSize
	notifications, total, err := s.repo.FindByUserID(userID, opts.Type, opts.IsRead, opts.PageSize, offset)
	if err != nil {
		logger.Error("Failed to list notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	unread, err := s.repo.CountUnread(userID)
	if err != nil {
		return nil, err
	}

	return &NotificationList{
		Notifications: notifications,
		TotalCount:    total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}

func (s *notificationService) MarkAsRead(userID, notificationID uint) error {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	if notification.UserID != userID {
		return ErrNotificationAccessDenied
	}

	return s.repo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID uint) error {
	return s.repo.MarkAllAsRead(userID)
}

func (s *notificationService) DeleteNotification(userID, notificationID uint) error {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	if notification.UserID != userID {
		return ErrNotificationAccessDenied
	}

	return s.repo.Delete(notificationID)
}

// NotifyConnectionRequested notifies the business owner that an investor
// wants to connect. conn must have Business preloaded.
func (s *notificationService) NotifyConnectionRequested(conn *model.Connection) {
	s.deliver(&model.Notification{
		UserID:              conn.Business.OwnerID,
		Type:                model.NotificationTypeConnectionRequested,
		Title:               "New connection request",
		Content:             fmt.Sprintf("An investor wants to connect with %s", conn.Business.Name),
		Link:                fmt.Sprintf("/connections/%d", conn.ID),
		RelatedConnectionID: &conn.ID,
		RelatedBusinessID:   &conn.BusinessID,
	})
}

func (s *notificationService) NotifyConnectionAccepted(conn *model.Connection) {
	s.deliver(&model.Notification{
		UserID:              conn.InvestorID,
		Type:                model.NotificationTypeConnectionAccepted,
		Title:               "Connection accepted",
		Content:             fmt.Sprintf("%s accepted your connection request", conn.Business.Name),
		Link:                fmt.Sprintf("/connections/%d", conn.ID),
		RelatedConnectionID: &conn.ID,
		RelatedBusinessID:   &conn.BusinessID,
	})
}

func (s *notificationService) NotifyConnectionDeclined(conn *model.Connection) {
	s.deliver(&model.Notification{
		UserID:              conn.InvestorID,
		Type:                model.NotificationTypeConnectionDeclined,
		Title:               "Connection declined",
		Content:             fmt.Sprintf("%s declined your connection request", conn.Business.Name),
		Link:                "/connections",
		RelatedConnectionID: &conn.ID,
		RelatedBusinessID:   &conn.BusinessID,
	})
}

// NotifyDocumentReviewed notifies the business owner of a review outcome.
func (s *notificationService) NotifyDocumentReviewed(doc *model.VerificationDocument, approved bool, reason string) {
	business, err := s.businessRepo.FindByID(doc.BusinessID)
	if err != nil {
		logger.Error("Failed to resolve business for document notification", err, map[string]interface{}{
			"document_id": doc.ID,
			"business_id": doc.BusinessID,
		})
		return
	}

	notification := &model.Notification{
		UserID:            business.OwnerID,
		Link:              fmt.Sprintf("/businesses/%d/documents", doc.BusinessID),
		RelatedBusinessID: &doc.BusinessID,
	}

	if approved {
		notification.Type = model.NotificationTypeDocumentApproved
		notification.Title = "Document approved"
		notification.Content = fmt.Sprintf("Your %s was verified", doc.FileName)
	} else {
		notification.Type = model.NotificationTypeDocumentRejected
		notification.Title = "Document rejected"
		notification.Content = fmt.Sprintf("Your %s was rejected: %s", doc.FileName, reason)
	}

	s.deliver(notification)
}

func (s *notificationService) NotifyMilestoneEvent(milestone *model.Milestone, recipientID uint, event model.NotificationType) {
	var title, content string
	switch event {
	case model.NotificationTypeMilestoneProposed:
		title = "Milestone proposed"
		content = fmt.Sprintf("A new milestone was proposed: %s", milestone.Title)
	case model.NotificationTypeMilestoneAgreed:
		title = "Milestone agreed"
		content = fmt.Sprintf("The milestone %q was agreed", milestone.Title)
	case model.NotificationTypeMilestoneCompleted:
		title = "Milestone completed"
		content = fmt.Sprintf("The milestone %q was marked completed", milestone.Title)
	default:
		logger.Warn("Unknown milestone notification event", map[string]interface{}{
			"event":        event,
			"milestone_id": milestone.ID,
		})
		return
	}

	s.deliver(&model.Notification{
		UserID:              recipientID,
		Type:                event,
		Title:               title,
		Content:             content,
		Link:                fmt.Sprintf("/connections/%d/milestones", milestone.ConnectionID),
		RelatedConnectionID: &milestone.ConnectionID,
		RelatedMilestoneID:  &milestone.ID,
	})
}

// deliver persists a notification and pushes it over WebSocket when the
// recipient is online.
func (s *notificationService) deliver(notification *model.Notification) {
	if err := s.repo.Create(notification); err != nil {
		logger.Error("Failed to create notification", err, map[string]interface{}{
			"user_id": notification.UserID,
			"type":    notification.Type,
		})
		return
	}

	logger.Debug("Notification created", map[string]interface{}{
		"notification_id": notification.ID,
		"user_id":         notification.UserID,
		"type":            notification.Type,
	})

	if s.hub == nil || !s.hub.IsUserOnline(notification.UserID) {
		return
	}

	payload := map[string]interface{}{
		"type":         "notification",
		"notification": notification,
	}
	if err := s.hub.SendToUser(notification.UserID, payload); err != nil {
		logger.Warn("Failed to push notification over websocket", map[string]interface{}{
			"user_id": notification.UserID,
			"error":   err.Error(),
		})
	}
}
