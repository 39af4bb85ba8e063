package service

import (
	"errors"
	"strings"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/websocket"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound     = errors.New("conversation not found")
	ErrConversationAccessDenied = errors.New("not a participant of this conversation")
	ErrMessageContentRequired   = errors.New("message content is required")
	ErrMessageNotFound          = errors.New("message not found")
)

// MessageInput is one outgoing message. Type defaults to text; the typed
// reference fields are only read for their matching type.
type MessageInput struct {
	Content      string
	Type         model.MessageType
	MilestoneID  *uint  // milestone_proposal
	DocumentType string // document_request
}

type ConversationService interface {
	GetConversation(conversationID, userID uint) (*model.Conversation, error)
	GetConversationByConnectionID(connectionID uint) (*model.Conversation, error)
	GetMyConversations(userID uint, page, pageSize int) ([]model.ConversationWithUnread, int64, error)
	MarkAsRead(conversationID, userID uint) error

	SendMessage(conversationID, senderID uint, input MessageInput) (*model.Message, error)
	GetMessages(conversationID, userID uint, page, pageSize int) ([]model.Message, int64, error)

	JoinConversation(userID, conversationID uint) error
	LeaveConversation(userID, conversationID uint) error
}

type conversationService struct {
	db   *gorm.DB
	repo repository.ConversationRepository
	hub  *websocket.Hub
}

func NewConversationService(db *gorm.DB, repo repository.ConversationRepository, hub *websocket.Hub) ConversationService {
	return &conversationService{
		db:   db,
		repo: repo,
		hub:  hub,
	}
}

// GetConversation loads a conversation and verifies the caller participates.
func (s *conversationService) GetConversation(conversationID, userID uint) (*model.Conversation, error) {
	conv, err := s.repo.FindByIDWithParticipants(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		logger.Warn("Conversation access denied", map[string]interface{}{
			"conversation_id": conversationID,
			"user_id":         userID,
		})
		return nil, ErrConversationAccessDenied
	}

	return conv, nil
}

func (s *conversationService) GetConversationByConnectionID(connectionID uint) (*model.Conversation, error) {
	conv, err := s.repo.FindByConnectionID(connectionID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (s *conversationService) GetMyConversations(userID uint, page, pageSize int) ([]model.ConversationWithUnread, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	conversations, total, err := s.repo.FindByUserID(userID, pageSize, offset)
	if err != nil {
		logger.Error("Failed to list conversations", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	result := make([]model.ConversationWithUnread, len(conversations))
	for i, conv := range conversations {
		result[i] = model.ConversationWithUnread{Conversation: conv}
		if conv.InvestorID == userID {
			result[i].UnreadCount = conv.InvestorUnreadCount
		} else {
			result[i].UnreadCount = conv.OwnerUnreadCount
		}
	}

	return result, total, nil
}

// MarkAsRead marks the other party's messages read and resets the caller's
// unread counter, then pushes a read event to the counterparty.
func (s *conversationService) MarkAsRead(conversationID, userID uint) error {
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return err
	}

	if err := s.repo.MarkMessagesAsRead(conversationID, userID); err != nil {
		return err
	}

	if err := s.repo.ResetUnreadCount(conversationID, userID); err != nil {
		return err
	}

	event := map[string]interface{}{
		"type":            "read",
		"conversation_id": conversationID,
		"user_id":         userID,
	}
	if err := s.hub.SendToConversation(conversationID, event, userID); err != nil {
		logger.Debug("Read event not delivered", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
	}

	return nil
}

func (s *conversationService) SendMessage(conversationID, senderID uint, input MessageInput) (*model.Message, error) {
	conv, err := s.GetConversation(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrMessageContentRequired
	}

	if input.Type == "" {
		input.Type = model.MessageTypeText
	}

	// Which counter to bump depends on who receives, not who sends.
	unreadCountField := "owner_unread_count"
	if senderID == conv.OwnerID {
		unreadCountField = "investor_unread_count"
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        input.Content,
		Type:           input.Type,
		IsRead:         false,
	}
	if input.Type == model.MessageTypeMilestoneProposal {
		message.MilestoneID = input.MilestoneID
	}
	if input.Type == model.MessageTypeDocumentRequest {
		message.DocumentType = input.DocumentType
	}

	// Message insert, last-message denormalization and the unread counter
	// move together or not at all.
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Create(message).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create message", err, map[string]interface{}{
			"conversation_id": conversationID,
			"sender_id":       senderID,
		})
		return nil, err
	}

	if err := tx.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id":      message.ID,
			"last_message_content": message.Content,
			"last_message_at":      message.CreatedAt,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn(unreadCountField, gorm.Expr(unreadCountField+" + ?", 1)).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	created, err := s.repo.FindMessageByID(message.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	wsMessage := map[string]interface{}{
		"type":    "new_message",
		"message": created,
	}
	if err := s.hub.SendToConversation(conversationID, wsMessage, senderID); err != nil {
		logger.Debug("Message not delivered over websocket", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
	}

	logger.Info("Message sent", map[string]interface{}{
		"message_id":      created.ID,
		"conversation_id": conversationID,
		"type":            created.Type,
	})
	return created, nil
}

func (s *conversationService) GetMessages(conversationID, userID uint, page, pageSize int) ([]model.Message, int64, error) {
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	offset := (page - 1) * pageSize
	return s.repo.FindMessages(conversationID, pageSize, offset)
}

func (s *conversationService) JoinConversation(userID, conversationID uint) error {
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return err
	}

	s.hub.JoinConversation(userID, conversationID)
	return nil
}

func (s *conversationService) LeaveConversation(userID, conversationID uint) error {
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return err
	}

	s.hub.LeaveConversation(userID, conversationID)
	return nil
}
