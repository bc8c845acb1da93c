package impl

import (
	"context"
	"errors"
	"testing"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	mockRealtime "beacon/internal/mocks/realtime"
	mockRepo "beacon/internal/mocks/repository"
	mockService "beacon/internal/mocks/service"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type messagingFixture struct {
	hub             *realtime.Hub
	txManager       *mockRepo.MockTransactionManager
	conversations   *mockRepo.MockConversationRepository
	messages        *mockRepo.MockMessageRepository
	txConversations *mockRepo.MockConversationRepository
	txMessages      *mockRepo.MockMessageRepository
	push            *mockService.MockPushService
	service         usecase.MessagingUsecase
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	hub, _ := newTestHub()
	f := &messagingFixture{
		hub:             hub,
		txManager:       mockRepo.NewMockTransactionManager(t),
		conversations:   mockRepo.NewMockConversationRepository(t),
		messages:        mockRepo.NewMockMessageRepository(t),
		txConversations: mockRepo.NewMockConversationRepository(t),
		txMessages:      mockRepo.NewMockMessageRepository(t),
		push:            mockService.NewMockPushService(t),
	}
	f.service = NewMessagingService(hub, f.txManager, f.conversations, f.messages, f.push, newTestMetrics(), discardLogger())

	return f
}

// expectTransaction runs the transaction body against the tx-bound repositories.
func (f *messagingFixture) expectTransaction(t *testing.T) {
	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.EXPECT().NewMessageRepository().Return(f.txMessages).Maybe()
	factory.EXPECT().NewConversationRepository().Return(f.txConversations).Maybe()

	f.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		})
}

// pair joins two participants of one conversation into its room.
func (f *messagingFixture) pair() (alice, bob *mockRealtime.Conn, conversation *entity.Conversation) {
	alice, _ = join(f.hub, "alice", "Alice")
	bob, _ = join(f.hub, "bob", "Bob")
	conversation = &entity.Conversation{
		ID:           uuid.New(),
		Participants: []uuid.UUID{alice.UserID(), bob.UserID()},
		IsActive:     true,
	}
	room := realtime.ConversationRoom(conversation.ID)
	f.hub.Conversations().Subscribe(alice.ID(), room)
	f.hub.Conversations().Subscribe(bob.ID(), room)

	return alice, bob, conversation
}

func (f *messagingFixture) expectPersist(ctx context.Context, conversation *entity.Conversation, recipient uuid.UUID, messageID uuid.UUID) {
	f.txMessages.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Message")).
		Run(func(_ context.Context, m *entity.Message) {
			m.ID = messageID
			m.CreatedAt = testStart
		}).
		Return(nil)
	f.txConversations.EXPECT().Touch(ctx, conversation.ID, messageID, testStart).Return(nil)
	f.txConversations.EXPECT().IncrementUnreadCount(ctx, conversation.ID, recipient).Return(nil)
}

func TestMessagingService_SendMessageToOnlineRecipient(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, bob, conversation := f.pair()
	messageID := uuid.New()
	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
	f.expectTransaction(t)
	f.expectPersist(ctx, conversation, bob.UserID(), messageID)
	f.conversations.EXPECT().FindByParticipant(ctx, alice.UserID(), true).Return([]*entity.Conversation{
		{ID: conversation.ID, UnreadCounts: map[uuid.UUID]int{alice.UserID(): 0, bob.UserID(): 1}},
	}, nil)
	f.conversations.EXPECT().FindByParticipant(ctx, bob.UserID(), true).Return([]*entity.Conversation{
		{ID: conversation.ID, UnreadCounts: map[uuid.UUID]int{alice.UserID(): 0, bob.UserID(): 1}},
		{ID: uuid.New(), UnreadCounts: map[uuid.UUID]int{bob.UserID(): 2}},
	}, nil)

	message, err := f.service.SendMessage(ctx, alice, &usecase.SendMessageInput{
		ConversationID: conversation.ID,
		Content:        entity.MessageContent{Text: "Still available?"},
	})

	require.NoError(t, err)
	assert.Equal(t, messageID, message.ID)
	assert.Equal(t, bob.UserID(), message.RecipientID)
	assert.Equal(t, entity.MessageTypeText, message.Content.Type)
	require.NotNil(t, message.Sender)
	assert.Equal(t, "Alice", message.Sender.Name)

	for _, conn := range []*mockRealtime.Conn{alice, bob} {
		relayed := conn.Named(realtime.EventNewMessage)
		require.Len(t, relayed, 1)
		assert.Equal(t, realtime.NewMessage{Message: message, ConversationID: conversation.ID}, relayed[0])
	}
	assert.Equal(t, []any{realtime.UnreadCount{TotalUnread: 0}}, alice.Named(realtime.EventUnreadCountUpdate))
	assert.Equal(t, []any{realtime.UnreadCount{TotalUnread: 3}}, bob.Named(realtime.EventUnreadCountUpdate))
}

func TestMessagingService_SendMessageToOfflineRecipientPushes(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, _ := join(f.hub, "alice", "Alice")
	bobID := uuid.New()
	conversation := &entity.Conversation{ID: uuid.New(), Participants: []uuid.UUID{alice.UserID(), bobID}}
	f.hub.Conversations().Subscribe(alice.ID(), realtime.ConversationRoom(conversation.ID))
	messageID := uuid.New()

	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
	f.expectTransaction(t)
	f.expectPersist(ctx, conversation, bobID, messageID)
	f.push.EXPECT().SendToUser(ctx, bobID.String(), service.PushMessage{
		Title:          "New message from Alice",
		Body:           "Sent an image",
		ConversationID: conversation.ID.String(),
	}).Return(nil)
	f.conversations.EXPECT().FindByParticipant(ctx, alice.UserID(), true).Return(nil, nil)

	_, err := f.service.SendMessage(ctx, alice, &usecase.SendMessageInput{
		ConversationID: conversation.ID,
		Content:        entity.MessageContent{Type: entity.MessageTypeImage, ImageURL: "https://cdn.example.com/bread.jpg"},
	})

	require.NoError(t, err)
	assert.Len(t, alice.Named(realtime.EventNewMessage), 1)
}

func TestMessagingService_SendMessagePushFailureIsNotFatal(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, _ := join(f.hub, "alice", "Alice")
	bobID := uuid.New()
	conversation := &entity.Conversation{ID: uuid.New(), Participants: []uuid.UUID{alice.UserID(), bobID}}

	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
	f.expectTransaction(t)
	f.expectPersist(ctx, conversation, bobID, uuid.New())
	f.push.EXPECT().SendToUser(ctx, bobID.String(), mock.Anything).Return(errors.New("fcm unavailable"))
	f.conversations.EXPECT().FindByParticipant(ctx, alice.UserID(), true).Return(nil, nil)

	_, err := f.service.SendMessage(ctx, alice, &usecase.SendMessageInput{
		ConversationID: conversation.ID,
		Content:        entity.MessageContent{Text: "hi"},
	})

	assert.NoError(t, err)
}

func TestMessagingService_SendMessageRejectsOutsider(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	outsider, _ := join(f.hub, "eve", "Eve")
	conversation := &entity.Conversation{ID: uuid.New(), Participants: []uuid.UUID{uuid.New(), uuid.New()}}
	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)

	_, err := f.service.SendMessage(ctx, outsider, &usecase.SendMessageInput{
		ConversationID: conversation.ID,
		Content:        entity.MessageContent{Text: "hello"},
	})

	assert.ErrorIs(t, err, domainerrors.ErrNotConversationParticipant)
	assert.Empty(t, outsider.Events())
}

func TestMessagingService_SendMessageStoreFailure(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, bob, conversation := f.pair()
	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
	f.expectTransaction(t)
	f.txMessages.EXPECT().Create(ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := f.service.SendMessage(ctx, alice, &usecase.SendMessageInput{
		ConversationID: conversation.ID,
		Content:        entity.MessageContent{Text: "hello"},
	})

	var external *domainerrors.ExternalServiceError
	assert.ErrorAs(t, err, &external)
	assert.Empty(t, bob.Named(realtime.EventNewMessage))
}

func TestMessagingService_MarkRead(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, bob, conversation := f.pair()
	messageID := uuid.New()

	f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
	f.expectTransaction(t)
	f.txMessages.EXPECT().MarkRead(ctx, conversation.ID, messageID, testStart).Return(nil)
	f.txConversations.EXPECT().SetUnreadCount(ctx, conversation.ID, alice.UserID(), 0).Return(nil)
	f.conversations.EXPECT().FindByParticipant(ctx, alice.UserID(), true).Return([]*entity.Conversation{
		{ID: uuid.New(), UnreadCounts: map[uuid.UUID]int{alice.UserID(): 4}},
	}, nil)

	err := f.service.MarkRead(ctx, alice, &usecase.MessageReceiptInput{MessageID: messageID, ConversationID: conversation.ID})

	require.NoError(t, err)
	assert.Equal(t, []any{realtime.MessageRead{MessageID: messageID, ReadBy: alice.UserID(), ReadAt: testStart}},
		bob.Named(realtime.EventMessageRead))
	assert.Empty(t, alice.Named(realtime.EventMessageRead))
	assert.Equal(t, []any{realtime.UnreadCount{TotalUnread: 4}}, alice.Named(realtime.EventUnreadCountUpdate))
}

func TestMessagingService_MarkReadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown message", func(t *testing.T) {
		f := newMessagingFixture(t)
		alice, _, conversation := f.pair()
		f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
		f.expectTransaction(t)
		f.txMessages.EXPECT().MarkRead(ctx, conversation.ID, mock.Anything, testStart).Return(repository.ErrMessageNotFound)

		err := f.service.MarkRead(ctx, alice, &usecase.MessageReceiptInput{MessageID: uuid.New(), ConversationID: conversation.ID})

		assert.ErrorIs(t, err, domainerrors.ErrMessageNotFound)
	})

	t.Run("message of another conversation", func(t *testing.T) {
		f := newMessagingFixture(t)
		alice, bob, conversation := f.pair()
		foreignMessage := uuid.New()
		f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)
		f.expectTransaction(t)
		f.txMessages.EXPECT().MarkRead(ctx, conversation.ID, foreignMessage, testStart).Return(repository.ErrMessageNotFound)

		err := f.service.MarkRead(ctx, alice, &usecase.MessageReceiptInput{MessageID: foreignMessage, ConversationID: conversation.ID})

		assert.ErrorIs(t, err, domainerrors.ErrMessageNotFound)
		assert.Empty(t, bob.Named(realtime.EventMessageRead))
	})

	t.Run("outsider", func(t *testing.T) {
		f := newMessagingFixture(t)
		_, _, conversation := f.pair()
		outsider, _ := join(f.hub, "eve", "Eve")
		f.conversations.EXPECT().FindByID(ctx, conversation.ID).Return(conversation, nil)

		err := f.service.MarkRead(ctx, outsider, &usecase.MessageReceiptInput{MessageID: uuid.New(), ConversationID: conversation.ID})

		assert.ErrorIs(t, err, domainerrors.ErrNotConversationParticipant)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		f := newMessagingFixture(t)
		alice, _ := join(f.hub, "alice", "Alice")
		f.conversations.EXPECT().FindByID(ctx, mock.Anything).Return(nil, repository.ErrConversationNotFound)

		err := f.service.MarkRead(ctx, alice, &usecase.MessageReceiptInput{MessageID: uuid.New(), ConversationID: uuid.New()})

		assert.ErrorIs(t, err, domainerrors.ErrConversationNotFound)
	})
}

func TestMessagingService_MarkDelivered(t *testing.T) {
	ctx := context.Background()

	t.Run("room member", func(t *testing.T) {
		f := newMessagingFixture(t)
		alice, bob, conversation := f.pair()
		messageID := uuid.New()
		f.messages.EXPECT().MarkDelivered(ctx, conversation.ID, messageID, testStart).Return(nil)

		err := f.service.MarkDelivered(ctx, alice, &usecase.MessageReceiptInput{MessageID: messageID, ConversationID: conversation.ID})

		require.NoError(t, err)
		assert.Equal(t, []any{realtime.MessageDelivered{MessageID: messageID, DeliveredAt: testStart}},
			bob.Named(realtime.EventMessageDelivered))
	})

	t.Run("message of another conversation", func(t *testing.T) {
		f := newMessagingFixture(t)
		alice, bob, conversation := f.pair()
		foreignMessage := uuid.New()
		f.messages.EXPECT().MarkDelivered(ctx, conversation.ID, foreignMessage, testStart).Return(repository.ErrMessageNotFound)

		err := f.service.MarkDelivered(ctx, alice, &usecase.MessageReceiptInput{MessageID: foreignMessage, ConversationID: conversation.ID})

		assert.ErrorIs(t, err, domainerrors.ErrMessageNotFound)
		assert.Empty(t, bob.Named(realtime.EventMessageDelivered))
	})

	t.Run("not in room", func(t *testing.T) {
		f := newMessagingFixture(t)
		_, _, conversation := f.pair()
		outsider, _ := join(f.hub, "eve", "Eve")

		err := f.service.MarkDelivered(ctx, outsider, &usecase.MessageReceiptInput{MessageID: uuid.New(), ConversationID: conversation.ID})

		assert.ErrorIs(t, err, domainerrors.ErrNotConversationParticipant)
	})
}

func TestMessagingService_Typing(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()
	alice, bob, conversation := f.pair()
	input := &usecase.TypingInput{ConversationID: conversation.ID}

	require.NoError(t, f.service.Typing(ctx, alice, input, true))
	require.NoError(t, f.service.Typing(ctx, alice, input, false))

	want := realtime.Typing{UserID: alice.UserID(), UserName: "Alice", ConversationID: conversation.ID}
	assert.Equal(t, []any{want}, bob.Named(realtime.EventUserTypingStart))
	assert.Equal(t, []any{want}, bob.Named(realtime.EventUserTypingStop))
	assert.Empty(t, alice.Events())

	outsider, _ := join(f.hub, "eve", "Eve")
	assert.ErrorIs(t, f.service.Typing(ctx, outsider, input, true), domainerrors.ErrNotConversationParticipant)
}
