package realtime

import (
	"time"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Outbound event names.
const (
	EventNearbyFoodAdded    = "nearby_food_added"
	EventFoodAdded          = "food_added"
	EventFoodUpdated        = "food_updated"
	EventFoodDeleted        = "food_deleted"
	EventViewportFoodUpdate = "viewport_food_update"
	EventPreferencesUpdated = "notification_preferences_updated"
	EventFoodInteraction    = "food_interaction_notification"
	EventSearchActivity     = "search_activity"
	EventNewMessage         = "new_message"
	EventUserTypingStart    = "user_typing_start"
	EventUserTypingStop     = "user_typing_stop"
	EventMessageRead        = "message_read"
	EventMessageDelivered   = "message_delivered"
	EventUnreadCountUpdate  = "unread_count_update"
	EventUserStatusChange   = "user_status_change"
	EventError              = "error"
)

// Interaction types reported to listing owners.
const (
	InteractionViewedOnMap        = "viewed_on_map"
	InteractionReservationAttempt = "reservation_attempt"
)

// NearbyFoodAdded is the tiered notification of a new listing.
type NearbyFoodAdded struct {
	Food                *entity.Listing `json:"food"`
	Distance            float64         `json:"distance"`
	Priority            Priority        `json:"priority"`
	NotificationTier    int             `json:"notificationTier"`
	PersonalizedMessage string          `json:"personalizedMessage"`
}

// NearbyFood is a listing sent to a user within the update radius.
type NearbyFood struct {
	Food     *entity.Listing `json:"food"`
	Distance float64         `json:"distance"`
}

// DeletedListing is the minimal record broadcast to cells when a listing goes away.
type DeletedListing struct {
	ID       uuid.UUID  `json:"id"`
	Location *orb.Point `json:"location"`
}

// Bounds is the wire form of a viewport rectangle.
type Bounds struct {
	North float64 `json:"north" validate:"gte=-90,lte=90"`
	South float64 `json:"south" validate:"gte=-90,lte=90"`
	East  float64 `json:"east" validate:"gte=-180,lte=180"`
	West  float64 `json:"west" validate:"gte=-180,lte=180"`
}

// BoundsOf converts an orb bound to its wire form.
func BoundsOf(b orb.Bound) Bounds {
	return Bounds{North: b.Top(), South: b.Bottom(), East: b.Right(), West: b.Left()}
}

// ViewportFoodUpdate tells a client its viewport settled and its listings should refresh.
type ViewportFoodUpdate struct {
	Bounds    Bounds     `json:"bounds"`
	Filters   MapFilters `json:"filters"`
	Timestamp time.Time  `json:"timestamp"`
}

// FoodInteraction tells a listing owner someone interacted with the listing.
type FoodInteraction struct {
	FoodID          uuid.UUID `json:"foodId"`
	FoodTitle       string    `json:"foodTitle"`
	InteractionType string    `json:"interactionType"`
	InteractingUser string    `json:"interactingUser"`
	Timestamp       time.Time `json:"timestamp"`
}

// SearchActivity announces a map search near the recipient.
type SearchActivity struct {
	SearchType string    `json:"searchType"`
	Area       orb.Point `json:"area"`
	Distance   float64   `json:"distance"`
}

// NewMessage relays a persisted chat message to a conversation room.
type NewMessage struct {
	Message        *entity.Message `json:"message"`
	ConversationID uuid.UUID       `json:"conversationId"`
}

// Typing signals that a participant started or stopped typing.
type Typing struct {
	UserID         uuid.UUID `json:"userId"`
	UserName       string    `json:"userName,omitempty"`
	ConversationID uuid.UUID `json:"conversationId"`
}

// MessageRead is the read receipt of a message.
type MessageRead struct {
	MessageID uuid.UUID `json:"messageId"`
	ReadBy    uuid.UUID `json:"readBy"`
	ReadAt    time.Time `json:"readAt"`
}

// MessageDelivered is the delivery receipt of a message.
type MessageDelivered struct {
	MessageID   uuid.UUID `json:"messageId"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// UnreadCount carries a user's unread total across active conversations.
type UnreadCount struct {
	TotalUnread int `json:"totalUnread"`
}

// StatusChange announces a user going online or offline.
type StatusChange struct {
	UserID   uuid.UUID  `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

// ErrorEvent is the only error channel towards a client.
type ErrorEvent struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
