package gateway

import (
	"bytes"

	domainerrors "beacon/internal/domain/errors"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Frame is the wire envelope of every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	frame, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s frame", event)
	}

	return frame, nil
}

func decodeFrame(raw []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("malformed frame")
	}
	if frame.Event == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("missing event name")
	}

	return &frame, nil
}

// decodePayload strictly decodes data into v. An absent payload leaves v zero.
func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
