package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeConnectionRequested NotificationType = "connection_requested"
	NotificationTypeConnectionAccepted  NotificationType = "connection_accepted"
	NotificationTypeConnectionDeclined  NotificationType = "connection_declined"
	NotificationTypeDocumentApproved    NotificationType = "document_approved"
	NotificationTypeDocumentRejected    NotificationType = "document_rejected"
	NotificationTypeMilestoneProposed   NotificationType = "milestone_proposed"
	NotificationTypeMilestoneAgreed     NotificationType = "milestone_agreed"
	NotificationTypeMilestoneCompleted  NotificationType = "milestone_completed"
)

// Notification is an in-app notification for one user.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`

	Title   string `gorm:"type:text;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Link    string `gorm:"type:text;not null" json:"link"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	// Related records (nullable)
	RelatedConnectionID *uint `gorm:"index" json:"related_connection_id,omitempty"`
	RelatedBusinessID   *uint `gorm:"index" json:"related_business_id,omitempty"`
	RelatedMilestoneID  *uint `gorm:"index" json:"related_milestone_id,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
