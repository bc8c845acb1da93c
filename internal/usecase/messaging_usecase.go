package usecase

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/realtime"

	"github.com/google/uuid"
)

// SendMessageInput is the payload of send_message.
type SendMessageInput struct {
	ConversationID uuid.UUID             `json:"conversationId" validate:"required"`
	Content        entity.MessageContent `json:"content"`
}

// TypingInput is the payload of typing_start and typing_stop.
type TypingInput struct {
	ConversationID uuid.UUID `json:"conversationId" validate:"required"`
}

// MessageReceiptInput is the payload of message_read and message_delivered.
type MessageReceiptInput struct {
	MessageID      uuid.UUID `json:"messageId" validate:"required"`
	ConversationID uuid.UUID `json:"conversationId" validate:"required"`
}

// MessagingUsecase relays conversation traffic between participants.
type MessagingUsecase interface {
	// SendMessage persists a message, relays it to the conversation room and updates
	// unread counters. Offline recipients get a push notification instead.
	SendMessage(ctx context.Context, conn realtime.Conn, input *SendMessageInput) (*entity.Message, error)

	// MarkRead marks a message read and resets the reader's unread counter.
	MarkRead(ctx context.Context, conn realtime.Conn, input *MessageReceiptInput) error

	// MarkDelivered stamps a message as delivered to the recipient's client.
	MarkDelivered(ctx context.Context, conn realtime.Conn, input *MessageReceiptInput) error

	// Typing relays a typing indicator to the rest of the conversation room.
	Typing(ctx context.Context, conn realtime.Conn, input *TypingInput, started bool) error
}
