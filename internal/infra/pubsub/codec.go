// Package pubsub publishes listing events to the realtime worker, through Google Pub/Sub
// in production and a direct HTTP push in development.
package pubsub

import (
	"beacon/internal/domain/constants"
	"beacon/internal/domain/service"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// PushMessage represents the structure of a Pub/Sub push message
// This mimics the format Google Pub/Sub uses when pushing to HTTP endpoints
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// EncodeListingEvent serialises event as a Pub/Sub payload.
func EncodeListingEvent(event *service.ListingEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

// DecodeListingEvent parses a Pub/Sub payload produced by EncodeListingEvent.
func DecodeListingEvent(data []byte) (*service.ListingEvent, error) {
	var event service.ListingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(err, "invalid listing event payload")
	}

	return &event, nil
}

// eventAttributes are the message attributes used for filtering and tracing.
func eventAttributes(event *service.ListingEvent) map[string]string {
	attributes := map[string]string{
		"listing_id":            event.ListingID,
		constants.AttrEventType: string(event.EventType),
	}
	if event.RequestID != "" {
		attributes[constants.AttrRequestID] = event.RequestID
	}

	return attributes
}
