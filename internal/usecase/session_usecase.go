package usecase

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/realtime"

	"github.com/google/uuid"
)

// ConversationRoomInput names the conversation of join_conversation and leave_conversation.
type ConversationRoomInput struct {
	ConversationID uuid.UUID `json:"conversationId" validate:"required"`
}

// SessionUsecase owns the lifecycle of realtime connections.
type SessionUsecase interface {
	// Authenticate verifies a handshake token and loads its user.
	Authenticate(ctx context.Context, token string) (*entity.User, error)

	// Connect creates the presence entry of conn, replacing any previous session of the
	// user, and joins the rooms of every conversation the user takes part in.
	Connect(ctx context.Context, conn realtime.Conn, user *entity.User) (*realtime.Session, error)

	// Disconnect releases every subscription of conn and announces the user offline.
	Disconnect(ctx context.Context, conn realtime.Conn)

	// JoinConversation subscribes conn to a conversation room the user takes part in.
	JoinConversation(ctx context.Context, conn realtime.Conn, input *ConversationRoomInput) error

	// Touch records inbound activity on the session conn still owns.
	Touch(conn realtime.Conn)

	// LeaveConversation unsubscribes conn from a conversation room.
	LeaveConversation(ctx context.Context, conn realtime.Conn, input *ConversationRoomInput) error

	// Stats summarises connections and rooms.
	Stats() realtime.Stats

	// OnlineUsers lists the users with a live session.
	OnlineUsers() []uuid.UUID
}
