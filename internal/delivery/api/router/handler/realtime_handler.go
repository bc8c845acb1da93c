package handler

import (
	"net/http"

	"beacon/internal/delivery/api/response"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RealtimeHandlerParams holds dependencies for RealtimeHandler, injected by Fx.
type RealtimeHandlerParams struct {
	fx.In

	SessionUC usecase.SessionUsecase
}

// RealtimeHandler exposes the in-memory realtime state over REST.
type RealtimeHandler struct {
	sessionUC usecase.SessionUsecase
}

// NewRealtimeHandler is the constructor for RealtimeHandler
func NewRealtimeHandler(params RealtimeHandlerParams) *RealtimeHandler {
	return &RealtimeHandler{
		sessionUC: params.SessionUC,
	}
}

// OnlineUsersResponse lists the users with a live connection.
type OnlineUsersResponse struct {
	Users []uuid.UUID `json:"users"`
	Count int         `json:"count"`
}

// GetStats returns connection and room counters.
func (h *RealtimeHandler) GetStats(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.sessionUC.Stats())
}

// GetOnlineUsers returns the IDs of connected users.
func (h *RealtimeHandler) GetOnlineUsers(c echo.Context) error {
	users := h.sessionUC.OnlineUsers()

	return response.Success(c, http.StatusOK, OnlineUsersResponse{
		Users: users,
		Count: len(users),
	})
}
