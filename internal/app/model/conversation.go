package model

import (
	"time"

	"gorm.io/gorm"
)

// MessageType tags how a message's payload should be interpreted
type MessageType string

const (
	MessageTypeText              MessageType = "text"
	MessageTypeMilestoneProposal MessageType = "milestone_proposal"
	MessageTypeDocumentRequest   MessageType = "document_request"
	MessageTypeSystem            MessageType = "system"
)

// Conversation is the 1:1 message channel between the investor and the
// business owner on a connection. Created exactly once, when the connection
// transitions lead -> connected.
type Conversation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ConnectionID uint       `gorm:"uniqueIndex;not null" json:"connection_id"`
	Connection   Connection `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// The two participants
	InvestorID uint `gorm:"not null;index:idx_investor_last_msg,priority:1;index" json:"investor_id"`
	OwnerID    uint `gorm:"not null;index:idx_owner_last_msg,priority:1;index" json:"owner_id"`
	Investor   User `gorm:"foreignKey:InvestorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"investor,omitempty"`
	Owner      User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`

	// Last message denormalization (conversation list ordering)
	LastMessageID      *uint      `json:"last_message_id,omitempty"`
	LastMessageContent string     `gorm:"type:text" json:"last_message_content,omitempty"`
	LastMessageAt      *time.Time `gorm:"index:idx_investor_last_msg,priority:2;index:idx_owner_last_msg,priority:2" json:"last_message_at,omitempty"`

	// Unread counters per participant
	InvestorUnreadCount int `gorm:"default:0" json:"investor_unread_count"`
	OwnerUnreadCount    int `gorm:"default:0" json:"owner_unread_count"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ParticipantIDs returns the two participant identities
func (c *Conversation) ParticipantIDs() []uint {
	return []uint{c.InvestorID, c.OwnerID}
}

// HasParticipant reports whether the user is one of the two participants
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.InvestorID == userID || c.OwnerID == userID
}

// Message belongs to one conversation. The type tag selects which of the
// typed reference fields carries the payload; plain text carries none.
type Message struct {
	ID             uint         `gorm:"primarykey" json:"id"`
	ConversationID uint         `gorm:"not null;index:idx_conv_created,priority:1;index" json:"conversation_id"`
	Conversation   Conversation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	SenderID uint `gorm:"not null;index" json:"sender_id"`
	Sender   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"sender,omitempty"`

	Content string      `gorm:"type:text;not null" json:"content"`
	Type    MessageType `gorm:"type:varchar(20);default:'text'" json:"type"`

	// Typed payload references, set per message type
	MilestoneID  *uint  `gorm:"index" json:"milestone_id,omitempty"`            // milestone_proposal
	DocumentType string `gorm:"type:varchar(50)" json:"document_type,omitempty"` // document_request

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time      `gorm:"index:idx_conv_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// ConversationWithUnread is a conversation plus the requesting user's unread count
type ConversationWithUnread struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}
