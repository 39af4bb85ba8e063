package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/db"
	"github.com/venturelink/venturelink-backend/internal/websocket"
	"gorm.io/gorm"
)

type conversationTestEnv struct {
	db            *gorm.DB
	conversations ConversationService
	investor      *model.User
	owner         *model.User
	conversation  *model.Conversation
}

func setupConversationTest(t *testing.T) *conversationTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	hub := websocket.NewHub()
	go hub.Run()

	conversationRepo := repository.NewConversationRepository(testDB)
	conversationService := NewConversationService(testDB, conversationRepo, hub)

	investor := &model.User{Email: "investor@example.com", PasswordHash: "hash", Name: "Investor", Role: model.RoleInvestor}
	testDB.Create(investor)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleBusiness}
	testDB.Create(owner)

	business := &model.BusinessProfile{
		OwnerID:            owner.ID,
		Name:               "Acme Payments",
		RegistrationNumber: "RC-100200",
		Sector:             "finance",
		Subsector:          "fintech",
	}
	testDB.Create(business)

	connection := &model.Connection{
		InvestorID: investor.ID,
		BusinessID: business.ID,
		Status:     model.ConnectionStatusConnected,
	}
	testDB.Create(connection)

	conversation := &model.Conversation{
		ConnectionID: connection.ID,
		InvestorID:   investor.ID,
		OwnerID:      owner.ID,
	}
	testDB.Create(conversation)

	return &conversationTestEnv{
		db:            testDB,
		conversations: conversationService,
		investor:      investor,
		owner:         owner,
		conversation:  conversation,
	}
}

func TestConversationService_SendMessage(t *testing.T) {
	env := setupConversationTest(t)

	message, err := env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{
		Content: "Hello, interested in your Series A plans",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MessageTypeText, message.Type)
	assert.False(t, message.IsRead)

	// Denormalized last-message fields and the owner's unread counter move
	var conv model.Conversation
	require.NoError(t, env.db.First(&conv, env.conversation.ID).Error)
	require.NotNil(t, conv.LastMessageID)
	assert.Equal(t, message.ID, *conv.LastMessageID)
	assert.Equal(t, message.Content, conv.LastMessageContent)
	assert.Equal(t, 1, conv.OwnerUnreadCount)
	assert.Equal(t, 0, conv.InvestorUnreadCount)
}

func TestConversationService_SendMessage_OwnerBumpsInvestorCounter(t *testing.T) {
	env := setupConversationTest(t)

	_, err := env.conversations.SendMessage(env.conversation.ID, env.owner.ID, MessageInput{
		Content: "Happy to share our deck",
	})
	require.NoError(t, err)

	var conv model.Conversation
	require.NoError(t, env.db.First(&conv, env.conversation.ID).Error)
	assert.Equal(t, 1, conv.InvestorUnreadCount)
	assert.Equal(t, 0, conv.OwnerUnreadCount)
}

func TestConversationService_SendMessage_EmptyContent(t *testing.T) {
	env := setupConversationTest(t)

	_, err := env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: "   "})
	assert.ErrorIs(t, err, ErrMessageContentRequired)
}

func TestConversationService_SendMessage_ReloadMiss(t *testing.T) {
	env := setupConversationTest(t)

	// The message vanishes before the post-commit reload, as when a
	// moderation sweep deletes it in between.
	err := env.db.Callback().Query().Before("gorm:query").Register("drop_message", func(d *gorm.DB) {
		if _, ok := d.Statement.Dest.(*model.Message); !ok {
			return
		}
		d.Session(&gorm.Session{NewDB: true}).Where("1 = 1").Delete(&model.Message{})
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = env.db.Callback().Query().Remove("drop_message")
	})

	_, err = env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: "Hi"})
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestConversationService_SendMessage_NotParticipant(t *testing.T) {
	env := setupConversationTest(t)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleInvestor}
	env.db.Create(stranger)

	_, err := env.conversations.SendMessage(env.conversation.ID, stranger.ID, MessageInput{Content: "Hi"})
	assert.ErrorIs(t, err, ErrConversationAccessDenied)
}

func TestConversationService_MarkAsRead(t *testing.T) {
	env := setupConversationTest(t)

	_, err := env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: "First"})
	require.NoError(t, err)
	_, err = env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: "Second"})
	require.NoError(t, err)

	require.NoError(t, env.conversations.MarkAsRead(env.conversation.ID, env.owner.ID))

	var conv model.Conversation
	require.NoError(t, env.db.First(&conv, env.conversation.ID).Error)
	assert.Equal(t, 0, conv.OwnerUnreadCount)

	var unread int64
	env.db.Model(&model.Message{}).
		Where("conversation_id = ? AND is_read = ?", env.conversation.ID, false).
		Count(&unread)
	assert.Equal(t, int64(0), unread)
}

func TestConversationService_GetMessages(t *testing.T) {
	env := setupConversationTest(t)

	for _, content := range []string{"one", "two", "three"} {
		_, err := env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: content})
		require.NoError(t, err)
	}

	messages, total, err := env.conversations.GetMessages(env.conversation.ID, env.owner.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, messages, 3)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleInvestor}
	env.db.Create(stranger)

	_, _, err = env.conversations.GetMessages(env.conversation.ID, stranger.ID, 1, 20)
	assert.ErrorIs(t, err, ErrConversationAccessDenied)
}

func TestConversationService_GetMyConversations(t *testing.T) {
	env := setupConversationTest(t)

	_, err := env.conversations.SendMessage(env.conversation.ID, env.investor.ID, MessageInput{Content: "Hello"})
	require.NoError(t, err)

	// The owner sees their unread count, the investor sees zero
	ownerView, total, err := env.conversations.GetMyConversations(env.owner.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, ownerView, 1)
	assert.Equal(t, 1, ownerView[0].UnreadCount)

	investorView, _, err := env.conversations.GetMyConversations(env.investor.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, investorView, 1)
	assert.Equal(t, 0, investorView[0].UnreadCount)
}
