package repository

import (
	"time"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	// Conversation operations
	Create(conv *model.Conversation) error
	FindByID(id uint) (*model.Conversation, error)
	FindByIDWithParticipants(id uint) (*model.Conversation, error)
	FindByConnectionID(connectionID uint) (*model.Conversation, error)
	FindByUserID(userID uint, limit, offset int) ([]model.Conversation, int64, error)
	ResetUnreadCount(conversationID, userID uint) error

	// Message operations
	CreateMessage(message *model.Message) error
	FindMessageByID(id uint) (*model.Message, error)
	FindMessages(conversationID uint, limit, offset int) ([]model.Message, int64, error)
	MarkMessagesAsRead(conversationID, readerID uint) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *conversationRepository) FindByID(id uint) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByIDWithParticipants(id uint) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.Preload("Investor").Preload("Owner").First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByConnectionID returns the conversation for a connection, or nil when
// none exists yet (connection still in lead state).
func (r *conversationRepository) FindByConnectionID(connectionID uint) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("connection_id = ?", connectionID).First(&conv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByUserID(userID uint, limit, offset int) ([]model.Conversation, int64, error) {
	var convs []model.Conversation
	var total int64

	query := r.db.Model(&model.Conversation{}).
		Where("investor_id = ? OR owner_id = ?", userID, userID).
		Preload("Investor").
		Preload("Owner")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Most recently active first
	if err := query.
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&convs).Error; err != nil {
		return nil, 0, err
	}

	return convs, total, nil
}

func (r *conversationRepository) ResetUnreadCount(conversationID, userID uint) error {
	var conv model.Conversation
	if err := r.db.First(&conv, conversationID).Error; err != nil {
		return err
	}

	field := ""
	if conv.InvestorID == userID {
		field = "investor_unread_count"
	} else if conv.OwnerID == userID {
		field = "owner_unread_count"
	} else {
		return nil
	}

	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Update(field, 0).Error
}

func (r *conversationRepository) CreateMessage(message *model.Message) error {
	return r.db.Create(message).Error
}

func (r *conversationRepository) FindMessageByID(id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.Preload("Sender").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *conversationRepository) FindMessages(conversationID uint, limit, offset int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	query := r.db.Model(&model.Message{}).Where("conversation_id = ?", conversationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkMessagesAsRead marks every unread message not sent by the reader.
func (r *conversationRepository) MarkMessagesAsRead(conversationID, readerID uint) error {
	now := time.Now()
	return r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}
