package handler

import (
	"log/slog"

	"beacon/internal/delivery/api/response"
	deliverycontext "beacon/internal/delivery/context"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ListingEventHandlerParams holds dependencies for ListingEventHandler, injected by Fx.
type ListingEventHandlerParams struct {
	fx.In

	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// ListingEventHandler accepts listing changes from the marketplace API and queues them
// for the realtime worker.
type ListingEventHandler struct {
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewListingEventHandler is the constructor for ListingEventHandler
func NewListingEventHandler(params ListingEventHandlerParams) *ListingEventHandler {
	return &ListingEventHandler{
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

// PublishListingEvent handles POST /api/v1/listings/events
func (h *ListingEventHandler) PublishListingEvent(c echo.Context) error {
	var event service.ListingEvent
	if err := c.Bind(&event); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing event")
	}

	if err := c.Validate(&event); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	if (event.Latitude == nil) != (event.Longitude == nil) {
		return response.BadRequest(c, "VALIDATION_ERROR", "latitude and longitude must be sent together")
	}

	ctx := c.Request().Context()
	event.RequestID = deliverycontext.GetRequestID(c)

	if err := h.publisher.PublishListingEvent(ctx, &event); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Error("[ListingEvents] Failed to publish",
			slog.String("event_type", string(event.EventType)),
			slog.String("listing_id", event.ListingID),
			slog.Any("error", err),
		)

		return response.HandleAppError(c, domainerrors.NewExternalServiceError("event publisher", err))
	}

	return response.Accepted(c, map[string]string{
		"listing_id": event.ListingID,
		"request_id": event.RequestID,
	})
}
