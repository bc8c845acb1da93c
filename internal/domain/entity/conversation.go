package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-participant message thread. The relay touches only its delivery
// state (last message, last activity, unread counters).
type Conversation struct {
	ID            uuid.UUID         `json:"id"`                      // The Global Unique Identifier (GUID) for the conversation.
	ListingID     *uuid.UUID        `json:"listingId,omitempty"`     // The listing the thread is about, if any.
	Participants  []uuid.UUID       `json:"participants"`            // Exactly two user IDs.
	LastMessageID *uuid.UUID        `json:"lastMessageId,omitempty"` // Most recent message in the thread.
	LastActivity  time.Time         `json:"lastActivity"`            // Time of the most recent message.
	IsActive      bool              `json:"isActive"`                // Archived conversations are inactive.
	UnreadCounts  map[uuid.UUID]int `json:"unreadCounts"`            // Unread messages per participant.
	CreatedAt     time.Time         `json:"createdAt"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}

	return false
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	for _, id := range c.Participants {
		if id != userID {
			return id, true
		}
	}

	return uuid.Nil, false
}

// UnreadCount returns the unread counter of userID, zero when absent.
func (c *Conversation) UnreadCount(userID uuid.UUID) int {
	return c.UnreadCounts[userID]
}
