// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "beacon/internal/delivery/context"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/geo"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/service"
)

// sessionOf returns the live session owned by conn. A session replaced by a newer
// connection of the same user, or already closed, is reported as ErrSessionClosed.
func sessionOf(hub *realtime.Hub, conn realtime.Conn) (*realtime.Session, error) {
	s, ok := hub.Session(conn.UserID())
	if !ok || s.ConnID != conn.ID() || s.State() == realtime.SessionDisconnected {
		return nil, domainerrors.ErrSessionClosed
	}

	return s, nil
}

// scopedLogger returns the connection-scoped logger carried by ctx, or fallback.
func scopedLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, fallback)
}

func reportSessions(hub *realtime.Hub, metrics service.RealtimeMetrics) {
	metrics.SetSessions(hub.Presence().Len(), hub.Presence().MapViewerCount())
}

func cellRooms(keys []geo.CellKey) []string {
	rooms := make([]string, len(keys))
	for i, key := range keys {
		rooms[i] = string(key)
	}

	return rooms
}
