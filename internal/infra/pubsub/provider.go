package pubsub

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"beacon/config"
	"beacon/internal/domain/constants"
	"beacon/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopPublisher is a no-op implementation when Pub/Sub is disabled
type noopPublisher struct {
	logger *slog.Logger
}

func (p *noopPublisher) PublishListingEvent(_ context.Context, event *service.ListingEvent) error {
	p.logger.Debug("[NoopPubSub] Event publishing disabled, skipping",
		slog.String("event_type", string(event.EventType)),
		slog.String("listing_id", event.ListingID),
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher selects the publisher named by pubsub.provider. The local provider
// posts straight to this process's own worker and is refused in production, where the
// worker is reached through a Pub/Sub push subscription.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger
	production := params.Config.Env.Env == constants.EnvProduction

	if cfg == nil || cfg.Provider == "" {
		if production {
			logger.Warn("[PubSub] Not configured in production, listing events are dropped")
		} else {
			logger.Info("[PubSub] Not configured, listing events are dropped")
		}

		return &noopPublisher{logger: logger}, nil
	}

	publisher, err := newProviderPublisher(params.Ctx, params.Config, production, logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("[PubSub] Closing publisher", slog.String("provider", cfg.Provider))

			return publisher.Close()
		},
	})

	return publisher, nil
}

func newProviderPublisher(ctx context.Context, cfg *config.Config, production bool, logger *slog.Logger) (service.EventPublisher, error) {
	ps := cfg.PubSub

	switch ps.Provider {
	case constants.PubSubProviderLocal:
		if production {
			return nil, errors.New("local provider cannot be used in production")
		}

		endpoint := ps.LocalEndpoint
		if endpoint == "" {
			endpoint = localWorkerEndpoint(cfg.Worker.Port)
		}
		logger.Info("[PubSub] Using local HTTP publisher", slog.String("endpoint", endpoint))

		return NewLocalHTTPPublisher(endpoint, logger), nil

	case constants.PubSubProviderGoogle:
		if ps.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if ps.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("[PubSub] Using Google publisher",
			slog.String("project_id", ps.ProjectID),
			slog.String("topic_id", ps.TopicID),
		)

		return NewGooglePubSubPublisher(ctx, ps.ProjectID, ps.TopicID, logger)

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", ps.Provider)
	}
}

// localWorkerEndpoint is the push route of the worker server running in this process.
func localWorkerEndpoint(port int) string {
	return "http://" + net.JoinHostPort("localhost", strconv.Itoa(port)) + "/push"
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
