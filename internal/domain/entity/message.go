package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// MessageType is the kind of content a message carries.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeLocation MessageType = "location"
	MessageTypeSystem   MessageType = "system"
)

// MaxMessageTextLength bounds the text of a single message.
const MaxMessageTextLength = 1000

// MessageContent is the payload of a chat message.
type MessageContent struct {
	Text     string      `json:"text,omitempty" validate:"max=1000"`
	Type     MessageType `json:"type,omitempty" validate:"omitempty,oneof=text image location system"`
	ImageURL string      `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Location *orb.Point  `json:"location,omitempty"`
	Address  string      `json:"address,omitempty"`
}

// Message is a single chat message between the two participants of a conversation.
type Message struct {
	ID             uuid.UUID      `json:"id"`                    // The Global Unique Identifier (GUID) for the message.
	ConversationID uuid.UUID      `json:"conversationId"`        // Owning conversation.
	SenderID       uuid.UUID      `json:"senderId"`              // Author of the message.
	RecipientID    uuid.UUID      `json:"recipientId"`           // The other participant.
	Sender         *UserSummary   `json:"sender,omitempty"`      // Populated author, set before relaying.
	Content        MessageContent `json:"content"`               // Message body.
	ReadAt         *time.Time     `json:"readAt,omitempty"`      // When the recipient read it.
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"` // When a recipient client acknowledged it.
	CreatedAt      time.Time      `json:"createdAt"`
}

// PreviewText returns the text used for the offline push body.
func (m *Message) PreviewText() string {
	switch m.Content.Type {
	case MessageTypeImage:
		return "Sent an image"
	case MessageTypeLocation:
		return "Shared a location"
	}

	return m.Content.Text
}
