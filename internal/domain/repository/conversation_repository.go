package repository

import (
	"context"
	"time"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for conversation persistence.
var (
	// ErrConversationNotFound is returned when a conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrMessageNotFound is returned when a message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)

// ConversationRepository defines the conversation operations of the messaging relay.
type ConversationRepository interface {
	// FindByID retrieves a conversation with its participants and unread counters.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)

	// FindByParticipant lists the conversations userID takes part in. With activeOnly
	// archived conversations are skipped.
	FindByParticipant(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Conversation, error)

	// Touch records messageID as the latest message of the conversation.
	Touch(ctx context.Context, id, messageID uuid.UUID, at time.Time) error

	// IncrementUnreadCount adds one to the unread counter of userID in the conversation.
	IncrementUnreadCount(ctx context.Context, id, userID uuid.UUID) error

	// SetUnreadCount overwrites the unread counter of userID in the conversation.
	SetUnreadCount(ctx context.Context, id, userID uuid.UUID, count int) error
}

// MessageRepository defines the message operations of the messaging relay.
type MessageRepository interface {
	// Create persists a new message and fills its ID and creation time.
	Create(ctx context.Context, message *entity.Message) error

	// FindByID retrieves a message by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)

	// MarkRead stamps the read time of a message of conversationID. A message of another
	// conversation is ErrMessageNotFound.
	MarkRead(ctx context.Context, conversationID, id uuid.UUID, at time.Time) error

	// MarkDelivered stamps the delivery time of a message of conversationID.
	MarkDelivered(ctx context.Context, conversationID, id uuid.UUID, at time.Time) error
}
