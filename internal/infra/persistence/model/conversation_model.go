package model

import (
	"time"

	"github.com/google/uuid"
)

// ConversationModel mirrors the 'conversations' table.
type ConversationModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ListingID     *uuid.UUID `gorm:"type:uuid;index"`
	LastMessageID *uuid.UUID `gorm:"type:uuid"`
	LastActivity  time.Time  `gorm:"not null;index"`
	IsActive      bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Participants []ConversationParticipantModel `gorm:"foreignKey:ConversationID"`
}

// TableName explicitly sets the table name for GORM.
func (ConversationModel) TableName() string {
	return "conversations"
}

// ConversationParticipantModel mirrors the 'conversation_participants' table. It holds the
// per-participant unread counter.
type ConversationParticipantModel struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	UnreadCount    int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ConversationParticipantModel) TableName() string {
	return "conversation_participants"
}

// MessageModel mirrors the 'messages' table.
type MessageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	RecipientID    uuid.UUID `gorm:"type:uuid;not null"`
	Type           string    `gorm:"type:varchar(20);not null;default:'text'"`
	Text           string    `gorm:"type:varchar(1000)"`
	ImageURL       string    `gorm:"type:text"`
	Latitude       *float64  `gorm:"type:decimal(10,8)"`
	Longitude      *float64  `gorm:"type:decimal(11,8)"`
	Address        string    `gorm:"type:text"`
	ReadAt         *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created"`
}

// TableName explicitly sets the table name for GORM.
func (MessageModel) TableName() string {
	return "messages"
}
