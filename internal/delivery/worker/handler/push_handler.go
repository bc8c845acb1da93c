package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"beacon/config"
	"beacon/internal/delivery/api/validator"
	deliverycontext "beacon/internal/delivery/context"
	"beacon/internal/domain/constants"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"
	"beacon/internal/errors"
	"beacon/internal/infra/pubsub"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

var (
	errMissingPushToken = errors.New("missing bearer token")
	errForeignIssuer    = errors.New("token not issued by google")
	errUnverifiedEmail  = errors.New("push service account email not verified")
)

// tokenValidator validates a Google-signed ID token for audience.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler ingests listing events pushed by Pub/Sub (or the local publisher).
type PushHandler struct {
	verifyPushAuth bool
	audience       string
	validateToken  tokenValidator
	validator      *validator.Validator
	fanout         usecase.FanoutUsecase
	logger         *slog.Logger
}

type PushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Fanout usecase.FanoutUsecase
}

// NewPushHandler verifies push tokens only for the google provider outside develop.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	h := &PushHandler{
		validateToken: idtoken.Validate,
		validator:     validator.New(),
		fanout:        params.Fanout,
		logger:        params.Logger,
	}

	if cfg := params.Config.PubSub; cfg != nil {
		h.audience = cfg.PushAudience
		h.verifyPushAuth = cfg.Provider == constants.PubSubProviderGoogle &&
			params.Config.Env.Env != constants.EnvDevelop
	}

	return h
}

// HandlePush answers 503 when the event should be redelivered and 200 otherwise, including for
// events that can never succeed. Malformed envelopes are 400.
func (h *PushHandler) HandlePush(c echo.Context) error {
	if h.verifyPushAuth {
		if err := h.authenticate(c.Request()); err != nil {
			h.logger.Warn("[Worker] Rejected push request", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	msg, event, err := decodePush(c)
	if err != nil {
		h.logger.Error("[Worker] Malformed push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	ctx := c.Request().Context()
	requestID := requestIDFor(ctx, msg, event)
	logger := h.logger.With(
		slog.String("request_id", requestID),
		slog.String("listing_id", event.ListingID),
		slog.String("event_type", string(event.EventType)),
	)
	ctx = deliverycontext.WithLogger(deliverycontext.WithRequestID(ctx, requestID), logger)

	logger.Info("[Worker] Listing event received", slog.String("message_id", msg.Message.MessageID))

	err = h.process(ctx, event)
	status := deliveryStatus(err)
	if err != nil {
		logger.Error("[Worker] Listing event failed",
			slog.Any("error", err),
			slog.Bool("redeliver", status == http.StatusServiceUnavailable),
		)

		return c.NoContent(status)
	}

	logger.Info("[Worker] Listing event fanned out")

	return c.NoContent(status)
}

func (h *PushHandler) process(ctx context.Context, event *service.ListingEvent) error {
	if err := h.validator.Validate(event); err != nil {
		return err
	}

	return h.fanout.HandleListingEvent(ctx, event)
}

// deliveryStatus redelivers only collaborator failures; a rejected event stays rejected.
func deliveryStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if _, ok := errors.AsType[*domainerrors.ExternalServiceError](err); ok {
		return http.StatusServiceUnavailable
	}

	return http.StatusOK
}

func decodePush(c echo.Context) (*pubsub.PushMessage, *service.ListingEvent, error) {
	var msg pubsub.PushMessage
	if err := c.Bind(&msg); err != nil {
		return nil, nil, errors.Wrap(err, "invalid push envelope")
	}

	data, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid message data encoding")
	}

	event, err := pubsub.DecodeListingEvent(data)
	if err != nil {
		return nil, nil, err
	}

	return &msg, event, nil
}

// requestIDFor prefers the message attribute, then the event payload, then the push request's
// own id, and finally a fresh uuid.
func requestIDFor(ctx context.Context, msg *pubsub.PushMessage, event *service.ListingEvent) string {
	candidates := []string{
		msg.Message.Attributes[constants.AttrRequestID],
		event.RequestID,
		deliverycontext.GetRequestIDFromContext(ctx),
	}
	for _, id := range candidates {
		if id != "" {
			return id
		}
	}

	return uuid.New().String()
}

// authenticate checks the OIDC token Pub/Sub attaches to authenticated push subscriptions.
func (h *PushHandler) authenticate(req *http.Request) error {
	token, ok := strings.CutPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok || token == "" {
		return errMissingPushToken
	}

	payload, err := h.validateToken(req.Context(), token, h.pushAudience(req))
	if err != nil {
		return errors.Wrap(err, "failed to validate push token")
	}

	switch payload.Issuer {
	case "accounts.google.com", "https://accounts.google.com":
	default:
		return errors.Wrapf(errForeignIssuer, "issuer %q", payload.Issuer)
	}

	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return errUnverifiedEmail
	}

	return nil
}

// pushAudience falls back to the URL the push was sent to.
func (h *PushHandler) pushAudience(req *http.Request) string {
	if h.audience != "" {
		return h.audience
	}

	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}

	return scheme + "://" + req.Host + req.URL.Path
}
