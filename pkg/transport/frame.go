package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// FrameType identifies the kind of a frame.
type FrameType string

const (
	FrameCommand           FrameType = "command"
	FrameProperties        FrameType = "properties"
	FrameTwin              FrameType = "twin"
	FrameDeviceInfoRequest FrameType = "device_info_request"

	FrameTelemetry        FrameType = "telemetry"
	FramePropertiesUpdate FrameType = "properties_update"
	FrameCommandResponse  FrameType = "command_response"
)

// Inbound reports whether frames of this type travel from the bridge to the
// device.
func (t FrameType) Inbound() bool {
	switch t {
	case FrameCommand, FrameProperties, FrameTwin, FrameDeviceInfoRequest:
		return true
	}
	return false
}

// Frame errors.
var (
	// ErrInvalidFrame indicates a frame that could not be decoded.
	ErrInvalidFrame = errors.New("transport: invalid frame")

	// ErrUnknownFrameType indicates a frame type the receiver does not handle.
	ErrUnknownFrameType = errors.New("transport: unknown frame type")
)

// Frame is the envelope exchanged with the bridge.
type Frame struct {
	// ID correlates a frame in bridge logs. Outbound frames get a random UUID.
	ID string `json:"id,omitempty"`

	Type FrameType `json:"type"`

	// RequestID links a response or ack to the request that caused it.
	RequestID uint32 `json:"request_id,omitempty"`

	// Name is the command name of command frames.
	Name string `json:"name,omitempty"`

	// Status is set on command responses.
	Status pnp.Status `json:"status,omitempty"`

	// Payload is a JSON document, embedded as is.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// newFrame builds an outbound frame. payload is copied since engine buffers
// are reused after the send returns.
func newFrame(typ FrameType, requestID uint32, payload []byte) Frame {
	f := Frame{
		ID:        uuid.NewString(),
		Type:      typ,
		RequestID: requestID,
	}
	if len(payload) > 0 {
		f.Payload = append(json.RawMessage(nil), payload...)
	}
	return f
}

// EncodeFrame returns the JSON encoding of f.
func EncodeFrame(f Frame) ([]byte, error) {
	if f.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidFrame)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	return data, nil
}

// DecodeFrame parses a frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	if f.Type == "" {
		return Frame{}, fmt.Errorf("%w: missing type", ErrInvalidFrame)
	}
	return f, nil
}
