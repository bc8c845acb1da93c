package impl

import (
	"context"
	"log/slog"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const pushTitlePrefix = "New message from "

// messagingService implements the MessagingUsecase interface.
type messagingService struct {
	hub           *realtime.Hub
	txManager     repository.TransactionManager
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	push          service.PushService
	metrics       service.RealtimeMetrics
	logger        *slog.Logger
}

// NewMessagingService is the constructor for messagingService.
func NewMessagingService(
	hub *realtime.Hub,
	txManager repository.TransactionManager,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	push service.PushService,
	metrics service.RealtimeMetrics,
	logger *slog.Logger,
) usecase.MessagingUsecase {
	return &messagingService{
		hub:           hub,
		txManager:     txManager,
		conversations: conversations,
		messages:      messages,
		push:          push,
		metrics:       metrics,
		logger:        logger,
	}
}

// SendMessage persists a message from a participant and relays it to the room.
func (srv *messagingService) SendMessage(ctx context.Context, conn realtime.Conn, input *usecase.SendMessageInput) (*entity.Message, error) {
	logger := scopedLogger(ctx, srv.logger)

	conversation, err := srv.participantConversation(ctx, input.ConversationID, conn.UserID())
	if err != nil {
		return nil, err
	}

	recipient, ok := conversation.OtherParticipant(conn.UserID())
	if !ok {
		return nil, domainerrors.ErrConversationNotFound.WithDetails("conversation has no other participant")
	}

	content := input.Content
	if content.Type == "" {
		content.Type = entity.MessageTypeText
	}
	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       conn.UserID(),
		RecipientID:    recipient,
		Content:        content,
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.NewMessageRepository().Create(ctx, message); err != nil {
			return err
		}

		conversations := factory.NewConversationRepository()
		if err := conversations.Touch(ctx, conversation.ID, message.ID, message.CreatedAt); err != nil {
			return err
		}

		return conversations.IncrementUnreadCount(ctx, conversation.ID, recipient)
	})
	if err != nil {
		return nil, translateRelayError(err)
	}

	// The sender may have disconnected while the message was stored.
	senderName := ""
	if s, ok := srv.hub.Session(conn.UserID()); ok {
		senderName = s.UserName
	}
	message.Sender = &entity.UserSummary{ID: conn.UserID(), Name: senderName}

	sent := srv.hub.EmitToRoom(srv.hub.Conversations(), realtime.ConversationRoom(conversation.ID),
		realtime.EventNewMessage, realtime.NewMessage{Message: message, ConversationID: conversation.ID}, "")
	srv.metrics.RoomBroadcast(realtime.EventNewMessage, sent)

	if !srv.hub.IsOnline(recipient) {
		push := service.PushMessage{
			Title:          pushTitlePrefix + senderName,
			Body:           message.PreviewText(),
			ConversationID: conversation.ID.String(),
		}
		if err := srv.push.SendToUser(ctx, recipient.String(), push); err != nil {
			logger.Warn("[Relay] Failed to push offline notification",
				slog.String("recipient_id", recipient.String()),
				slog.Any("error", err),
			)
		}
	}

	srv.refreshUnread(ctx, conn.UserID())
	srv.refreshUnread(ctx, recipient)

	logger.Debug("[Relay] Message sent",
		slog.String("conversation_id", conversation.ID.String()),
		slog.String("message_id", message.ID.String()),
		slog.Int("room_deliveries", sent),
	)

	return message, nil
}

// MarkRead stamps a message read, resets the reader's unread counter and tells the room.
func (srv *messagingService) MarkRead(ctx context.Context, conn realtime.Conn, input *usecase.MessageReceiptInput) error {
	if _, err := srv.participantConversation(ctx, input.ConversationID, conn.UserID()); err != nil {
		return err
	}

	readAt := srv.hub.Now()
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.NewMessageRepository().MarkRead(ctx, input.ConversationID, input.MessageID, readAt); err != nil {
			return err
		}

		return factory.NewConversationRepository().SetUnreadCount(ctx, input.ConversationID, conn.UserID(), 0)
	})
	if err != nil {
		return translateRelayError(err)
	}

	srv.hub.EmitToRoom(srv.hub.Conversations(), realtime.ConversationRoom(input.ConversationID),
		realtime.EventMessageRead, realtime.MessageRead{
			MessageID: input.MessageID,
			ReadBy:    conn.UserID(),
			ReadAt:    readAt,
		}, conn.ID())

	srv.refreshUnread(ctx, conn.UserID())

	return nil
}

// MarkDelivered stamps a message as delivered and tells the rest of the room.
func (srv *messagingService) MarkDelivered(ctx context.Context, conn realtime.Conn, input *usecase.MessageReceiptInput) error {
	room := realtime.ConversationRoom(input.ConversationID)
	if !srv.hub.Conversations().Has(conn.ID(), room) {
		return domainerrors.ErrNotConversationParticipant
	}

	deliveredAt := srv.hub.Now()
	if err := srv.messages.MarkDelivered(ctx, input.ConversationID, input.MessageID, deliveredAt); err != nil {
		return translateRelayError(err)
	}

	srv.hub.EmitToRoom(srv.hub.Conversations(), room, realtime.EventMessageDelivered, realtime.MessageDelivered{
		MessageID:   input.MessageID,
		DeliveredAt: deliveredAt,
	}, conn.ID())

	return nil
}

// Typing relays a typing indicator to the other room members.
func (srv *messagingService) Typing(_ context.Context, conn realtime.Conn, input *usecase.TypingInput, started bool) error {
	room := realtime.ConversationRoom(input.ConversationID)
	if !srv.hub.Conversations().Has(conn.ID(), room) {
		return domainerrors.ErrNotConversationParticipant
	}

	event := realtime.EventUserTypingStop
	if started {
		event = realtime.EventUserTypingStart
	}

	payload := realtime.Typing{UserID: conn.UserID(), ConversationID: input.ConversationID}
	if s, ok := srv.hub.Session(conn.UserID()); ok {
		payload.UserName = s.UserName
	}
	srv.hub.EmitToRoom(srv.hub.Conversations(), room, event, payload, conn.ID())

	return nil
}

func (srv *messagingService) participantConversation(ctx context.Context, id, userID uuid.UUID) (*entity.Conversation, error) {
	conversation, err := srv.conversations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, domainerrors.ErrConversationNotFound
		}

		return nil, domainerrors.NewExternalServiceError("conversation store", err)
	}

	if !conversation.HasParticipant(userID) {
		return nil, domainerrors.ErrNotConversationParticipant
	}

	return conversation, nil
}

// refreshUnread pushes the unread total across active conversations to userID, when online.
func (srv *messagingService) refreshUnread(ctx context.Context, userID uuid.UUID) {
	if !srv.hub.IsOnline(userID) {
		return
	}

	conversations, err := srv.conversations.FindByParticipant(ctx, userID, true)
	if err != nil {
		scopedLogger(ctx, srv.logger).Warn("[Relay] Failed to load unread counts",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)

		return
	}

	total := 0
	for _, c := range conversations {
		total += c.UnreadCount(userID)
	}

	srv.hub.EmitToUser(userID, realtime.EventUnreadCountUpdate, realtime.UnreadCount{TotalUnread: total})
}

func translateRelayError(err error) error {
	switch {
	case errors.Is(err, repository.ErrMessageNotFound):
		return domainerrors.ErrMessageNotFound
	case errors.Is(err, repository.ErrConversationNotFound):
		return domainerrors.ErrConversationNotFound
	default:
		return domainerrors.NewExternalServiceError("message store", err)
	}
}
