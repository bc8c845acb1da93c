package impl

import (
	"context"
	"log/slog"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	hub           *realtime.Hub
	tokens        service.TokenService
	users         repository.UserRepository
	conversations repository.ConversationRepository
	metrics       service.RealtimeMetrics
	cfg           *config.Config
	logger        *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	hub *realtime.Hub,
	tokens service.TokenService,
	users repository.UserRepository,
	conversations repository.ConversationRepository,
	metrics service.RealtimeMetrics,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		hub:           hub,
		tokens:        tokens,
		users:         users,
		conversations: conversations,
		metrics:       metrics,
		cfg:           cfg,
		logger:        logger,
	}
}

// Authenticate verifies token and loads the user it was issued to.
func (srv *sessionService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, domainerrors.ErrAuthenticationFailed.WithDetails("missing token")
	}

	claims, err := srv.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, domainerrors.ErrAuthenticationFailed.WrapMessage(err.Error())
	}

	user, err := srv.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrAuthenticationFailed.WithDetails("user not found")
		}

		return nil, domainerrors.NewExternalServiceError("user store", err)
	}

	return user, nil
}

// Connect registers conn as the live session of user.
func (srv *sessionService) Connect(ctx context.Context, conn realtime.Conn, user *entity.User) (*realtime.Session, error) {
	logger := scopedLogger(ctx, srv.logger)
	now := srv.hub.Now()

	session := realtime.NewSession(user.ID, user.Name, conn.ID(), now, srv.cfg.Realtime.LocationThrottle)
	if user.Location != nil {
		session.SetLocation(realtime.Location{Point: *user.Location, UpdatedAt: user.UpdatedAt})
	}

	if prev := srv.hub.Register(conn, session); prev != nil && prev.ConnID != conn.ID() {
		prev.Close(now)
		if old, ok := srv.hub.Conn(prev.ConnID); ok {
			_ = old.Close()
		}
		logger.Info("[Session] Replaced previous connection",
			slog.String("previous_connection_id", string(prev.ConnID)),
		)
	}

	conversations, err := srv.conversations.FindByParticipant(ctx, user.ID, false)
	if err != nil {
		// The connection stays usable; rooms can still be joined explicitly.
		logger.Warn("[Session] Failed to load conversations", slog.Any("error", err))
	}

	// The connection may have gone away while the store was queried.
	if _, err := sessionOf(srv.hub, conn); err != nil {
		return nil, err
	}

	for _, c := range conversations {
		srv.hub.Conversations().Subscribe(conn.ID(), realtime.ConversationRoom(c.ID))
	}

	srv.hub.Broadcast(realtime.EventUserStatusChange, realtime.StatusChange{
		UserID:   user.ID,
		IsOnline: true,
	})
	reportSessions(srv.hub, srv.metrics)

	logger.Info("[Session] Connected", slog.Int("conversation_count", len(conversations)))

	return session, nil
}

// Disconnect tears down everything conn held. Only the connection that still owns the
// presence entry announces the user offline.
func (srv *sessionService) Disconnect(ctx context.Context, conn realtime.Conn) {
	now := srv.hub.Now()

	if s, ok := srv.hub.Session(conn.UserID()); ok && s.ConnID == conn.ID() {
		s.Close(now)
	}

	if owned := srv.hub.Unregister(conn.ID(), conn.UserID()); owned {
		lastSeen := now
		srv.hub.Broadcast(realtime.EventUserStatusChange, realtime.StatusChange{
			UserID:   conn.UserID(),
			IsOnline: false,
			LastSeen: &lastSeen,
		})
	}
	reportSessions(srv.hub, srv.metrics)

	scopedLogger(ctx, srv.logger).Info("[Session] Disconnected")
}

// JoinConversation subscribes conn to a conversation the user takes part in.
func (srv *sessionService) JoinConversation(ctx context.Context, conn realtime.Conn, input *usecase.ConversationRoomInput) error {
	conversation, err := srv.conversations.FindByID(ctx, input.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return domainerrors.ErrConversationNotFound
		}

		return domainerrors.NewExternalServiceError("conversation store", err)
	}

	if !conversation.HasParticipant(conn.UserID()) {
		return domainerrors.ErrNotConversationParticipant
	}

	if _, err := sessionOf(srv.hub, conn); err != nil {
		return err
	}

	srv.hub.Conversations().Subscribe(conn.ID(), realtime.ConversationRoom(conversation.ID))

	return nil
}

// Touch refreshes the last-seen time of conn's session. A replaced or closed session is
// left alone.
func (srv *sessionService) Touch(conn realtime.Conn) {
	if s, err := sessionOf(srv.hub, conn); err == nil {
		s.Touch(srv.hub.Now())
	}
}

// LeaveConversation unsubscribes conn from a conversation room.
func (srv *sessionService) LeaveConversation(_ context.Context, conn realtime.Conn, input *usecase.ConversationRoomInput) error {
	srv.hub.Conversations().Unsubscribe(conn.ID(), realtime.ConversationRoom(input.ConversationID))

	return nil
}

// Stats summarises connections and rooms.
func (srv *sessionService) Stats() realtime.Stats {
	return srv.hub.Stats()
}

// OnlineUsers lists the users with a live session.
func (srv *sessionService) OnlineUsers() []uuid.UUID {
	return srv.hub.Presence().UserIDs()
}
