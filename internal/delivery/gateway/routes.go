package gateway

import (
	"context"
	"log/slog"

	deliverycontext "beacon/internal/delivery/context"
	"beacon/internal/domain/realtime"
	"beacon/internal/usecase"

	"github.com/goccy/go-json"
)

// Inbound event names.
const (
	EventMapSessionStart    = "map_session_start"
	EventMapSessionEnd      = "map_session_end"
	EventMapViewportChange  = "map_viewport_change"
	EventMapFilterChange    = "map_filter_change"
	EventJoinArea           = "join_geographic_area"
	EventLeaveArea          = "leave_geographic_area"
	EventLocationUpdate     = "location_update"
	EventSetPreferences     = "set_notification_preferences"
	EventMapSearch          = "map_search"
	EventFoodMarkerViewed   = "food_marker_viewed"
	EventFoodMarkerClicked  = "food_marker_clicked"
	EventFoodReserveAttempt = "food_reserve_attempt"
	EventFoodMessageSent    = "food_message_sent"
	EventMapAnalytics       = "map_analytics"
	EventJoinConversation   = "join_conversation"
	EventLeaveConversation  = "leave_conversation"
	EventSendMessage        = "send_message"
	EventTypingStart        = "typing_start"
	EventTypingStop         = "typing_stop"
	EventMessageRead        = "message_read"
	EventMessageDelivered   = "message_delivered"
)

func (g *Gateway) routes() map[string]handlerFunc {
	v := g.validator

	return map[string]handlerFunc{
		EventMapSessionStart:    bind(v, g.maps.StartMapSession),
		EventMapSessionEnd:      g.endMapSession,
		EventMapViewportChange:  bind(v, g.maps.ChangeViewport),
		EventMapFilterChange:    bind(v, g.maps.ChangeFilters),
		EventJoinArea:           bind(v, g.joinArea),
		EventLeaveArea:          bind(v, g.maps.LeaveArea),
		EventLocationUpdate:     bind(v, g.maps.UpdateLocation),
		EventSetPreferences:     bind(v, g.maps.SetPreferences),
		EventMapSearch:          bind(v, g.maps.Search),
		EventFoodMarkerViewed:   bind(v, g.maps.MarkerViewed),
		EventFoodMarkerClicked:  bind(v, g.maps.MarkerClicked),
		EventFoodReserveAttempt: bind(v, g.maps.ReserveAttempt),
		EventFoodMessageSent:    bind(v, g.maps.FoodMessageSent),
		EventMapAnalytics:       bind(v, g.maps.Analytics),

		EventJoinConversation:  bind(v, g.sessions.JoinConversation),
		EventLeaveConversation: bind(v, g.sessions.LeaveConversation),

		EventSendMessage:      bind(v, g.sendMessage),
		EventTypingStart:      bind(v, g.typingStart),
		EventTypingStop:       bind(v, g.typingStop),
		EventMessageRead:      bind(v, g.messaging.MarkRead),
		EventMessageDelivered: bind(v, g.messaging.MarkDelivered),
	}
}

// bind decodes and validates the payload of an event before handing it to fn.
func bind[T any](v interface{ Validate(any) error }, fn func(context.Context, realtime.Conn, *T) error) handlerFunc {
	return func(ctx context.Context, conn realtime.Conn, data json.RawMessage) error {
		in := new(T)
		if err := decodePayload(data, in); err != nil {
			return err
		}
		if err := v.Validate(in); err != nil {
			return err
		}

		return fn(ctx, conn, in)
	}
}

func (g *Gateway) joinArea(ctx context.Context, conn realtime.Conn, in *usecase.JoinAreaInput) error {
	areaID, err := g.maps.JoinArea(ctx, conn, in)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, g.logger).Debug("[Gateway] Joined area", slog.String("area_id", areaID))

	return nil
}

func (g *Gateway) sendMessage(ctx context.Context, conn realtime.Conn, in *usecase.SendMessageInput) error {
	msg, err := g.messaging.SendMessage(ctx, conn, in)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, g.logger).Debug("[Gateway] Message relayed", slog.String("message_id", msg.ID.String()))

	return nil
}

func (g *Gateway) endMapSession(ctx context.Context, conn realtime.Conn, _ json.RawMessage) error {
	return g.maps.EndMapSession(ctx, conn)
}

func (g *Gateway) typingStart(ctx context.Context, conn realtime.Conn, in *usecase.TypingInput) error {
	return g.messaging.Typing(ctx, conn, in, true)
}

func (g *Gateway) typingStop(ctx context.Context, conn realtime.Conn, in *usecase.TypingInput) error {
	return g.messaging.Typing(ctx, conn, in, false)
}
