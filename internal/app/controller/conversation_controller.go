package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	ws "github.com/venturelink/venturelink-backend/internal/websocket"
	"github.com/venturelink/venturelink-backend/pkg/logger"
)

type ConversationController struct {
	conversationService service.ConversationService
	hub                 *ws.Hub
	upgrader            websocket.Upgrader
}

func NewConversationController(conversationService service.ConversationService, hub *ws.Hub, allowedOrigins []string) *ConversationController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &ConversationController{
		conversationService: conversationService,
		hub:                 hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

type SendMessageRequest struct {
	Content      string `json:"content" binding:"required"`
	Type         string `json:"type,omitempty" binding:"omitempty,oneof=text milestone_proposal document_request system"`
	MilestoneID  *uint  `json:"milestone_id,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// GetMyConversations lists the caller's conversations with unread counts
// GET /api/v1/conversations
func (ctrl *ConversationController) GetMyConversations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	conversations, total, err := ctrl.conversationService.GetMyConversations(userID, page, pageSize)
	if err != nil {
		log.Error("Failed to list conversations", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	})
}

// GetMessages returns a page of messages, newest first
// GET /api/v1/conversations/:id/messages
func (ctrl *ConversationController) GetMessages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid conversation ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	messages, total, err := ctrl.conversationService.GetMessages(uint(conversationID), userID, page, pageSize)
	if err != nil {
		ctrl.respondConversationError(c, err, uint(conversationID), log)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":  messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SendMessage posts a message into a conversation
// POST /api/v1/conversations/:id/messages
func (ctrl *ConversationController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid conversation ID")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Message content is required")
		return
	}

	message, err := ctrl.conversationService.SendMessage(uint(conversationID), userID, service.MessageInput{
		Content:      req.Content,
		Type:         model.MessageType(req.Type),
		MilestoneID:  req.MilestoneID,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		if errors.Is(err, service.ErrMessageContentRequired) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Message content is required")
			return
		}
		ctrl.respondConversationError(c, err, uint(conversationID), log)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// MarkAsRead marks the counterparty's messages read
// POST /api/v1/conversations/:id/read
func (ctrl *ConversationController) MarkAsRead(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid conversation ID")
		return
	}

	if err := ctrl.conversationService.MarkAsRead(uint(conversationID), userID); err != nil {
		ctrl.respondConversationError(c, err, uint(conversationID), log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked as read"})
}

// JoinConversation subscribes the caller's sessions to live events
// POST /api/v1/conversations/:id/join
func (ctrl *ConversationController) JoinConversation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid conversation ID")
		return
	}

	if err := ctrl.conversationService.JoinConversation(userID, uint(conversationID)); err != nil {
		ctrl.respondConversationError(c, err, uint(conversationID), log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined conversation"})
}

// LeaveConversation unsubscribes the caller's sessions
// POST /api/v1/conversations/:id/leave
func (ctrl *ConversationController) LeaveConversation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid conversation ID")
		return
	}

	if err := ctrl.conversationService.LeaveConversation(userID, uint(conversationID)); err != nil {
		ctrl.respondConversationError(c, err, uint(conversationID), log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left conversation"})
}

// HandleWebSocket upgrades the request and registers the session with the hub
// GET /api/v1/ws?token=...
func (ctrl *ConversationController) HandleWebSocket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		UserID:        userID,
		Send:          make(chan []byte, 2048),
		Conversations: make(map[uint]bool),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}

func (ctrl *ConversationController) respondConversationError(c *gin.Context, err error, conversationID uint, log *logger.Logger) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		apperrors.NotFound(c, apperrors.ConversationNotFound, "Conversation not found")
	case errors.Is(err, service.ErrConversationAccessDenied):
		apperrors.Forbidden(c, "You are not a participant of this conversation")
	case errors.Is(err, service.ErrMessageNotFound):
		apperrors.NotFound(c, apperrors.MessageNotFound, "Message not found")
	default:
		log.Error("Conversation operation failed", err, map[string]interface{}{
			"conversation_id": conversationID,
		})
		apperrors.InternalError(c, "")
	}
}
