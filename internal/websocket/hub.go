package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/venturelink/venturelink-backend/pkg/logger"
)

// ClientMessage is an inbound event from a connected client
type ClientMessage struct {
	Type           string `json:"type"` // typing_start, typing_stop
	ConversationID uint   `json:"conversation_id"`
}

// Client is one WebSocket session for a user
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	Conversations map[uint]bool // conversations this session has joined
	mu            sync.RWMutex
	MessageCount  int       // messages received in the current window
	LastResetTime time.Time // start of the current rate window
	RateMu        sync.Mutex
}

// Hub tracks connected clients and routes events to conversations and users
type Hub struct {
	// registered clients per user (multi-device: one user, many sessions)
	clients map[uint][]*Client

	// conversation membership (ConversationID -> set of UserIDs)
	rooms map[uint]map[uint]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage is an event destined for one conversation
type BroadcastMessage struct {
	ConversationID uint
	Message        []byte
	SenderID       uint // excluded from delivery
}

// NewHub creates a Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		rooms:      make(map[uint]map[uint]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

// Run processes hub events; call in its own goroutine
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				if len(newList) == 0 {
					// last session: drop the user from all conversations
					delete(h.clients, client.UserID)

					client.mu.RLock()
					for convID := range client.Conversations {
						if users, ok := h.rooms[convID]; ok {
							delete(users, client.UserID)
							if len(users) == 0 {
								delete(h.rooms, convID)
							}
						}
					}
					client.mu.RUnlock()
				} else {
					h.clients[client.UserID] = newList
				}

				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			if users, ok := h.rooms[message.ConversationID]; ok {
				for userID := range users {
					if userID == message.SenderID {
						continue
					}
					h.deliverLocked(userID, message.Message)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// deliverLocked sends to all sessions of a user; caller holds h.mu (read)
func (h *Hub) deliverLocked(userID uint, payload []byte) {
	clientList, ok := h.clients[userID]
	if !ok {
		return
	}
	for _, client := range clientList {
		select {
		case client.Send <- payload:
		default:
			// send buffer stuck; drop the session asynchronously
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}

// JoinConversation subscribes every session of a user to a conversation
func (h *Hub) JoinConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			client.Conversations[conversationID] = true
			client.mu.Unlock()
		}

		if _, ok := h.rooms[conversationID]; !ok {
			h.rooms[conversationID] = make(map[uint]bool)
		}
		h.rooms[conversationID][userID] = true
	}
}

// LeaveConversation unsubscribes a user from a conversation
func (h *Hub) LeaveConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			delete(client.Conversations, conversationID)
			client.mu.Unlock()
		}
	}

	if users, ok := h.rooms[conversationID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// SendToConversation pushes an event to every participant except the sender
func (h *Hub) SendToConversation(conversationID uint, message interface{}, senderID uint) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{
		ConversationID: conversationID,
		Message:        data,
		SenderID:       senderID,
	}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"conversation_id": conversationID,
		})
		return nil // push is best-effort; the record is already persisted
	}
}

// SendToUser pushes an event directly to all sessions of one user
// (notifications, connection updates)
func (h *Hub) SendToUser(userID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliverLocked(userID, data)
	return nil
}

// Register registers a client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether a user has at least one session
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage processes an inbound client event
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	// rate limit per session
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "typing_start" || msg.Type == "typing_stop" {
		client.mu.RLock()
		_, isInConversation := client.Conversations[msg.ConversationID]
		client.mu.RUnlock()

		if !isInConversation {
			return
		}

		response := map[string]interface{}{
			"type":            msg.Type,
			"conversation_id": msg.ConversationID,
			"user_id":         client.UserID,
		}

		if err := h.SendToConversation(msg.ConversationID, response, client.UserID); err != nil {
			logger.Error("Failed to broadcast typing event", err, map[string]interface{}{
				"user_id":         client.UserID,
				"conversation_id": msg.ConversationID,
			})
		}
	}
}
