package log

import "time"

// MaxPayloadCapture is the largest payload copied into a MessageEvent.
const MaxPayloadCapture = 512

// Event is one captured protocol event. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp of the event (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one agent run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// DeviceID is the hub device identity, if known.
	DeviceID string `cbor:"3,keyasint,omitempty"`

	Direction Direction `cbor:"4,keyasint"`
	Layer     Layer     `cbor:"5,keyasint"`
	Category  Category  `cbor:"6,keyasint"`

	// One of these is set.
	Message     *MessageEvent     `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction of a message relative to the agent.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer that captured the event.
type Layer uint8

const (
	// LayerTransport is the hub connection.
	LayerTransport Layer = 0
	// LayerCodec is JSON encoding and decoding.
	LayerCodec Layer = 1
	// LayerEngine is dispatch and reconciliation.
	LayerEngine Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCodec:
		return "CODEC"
	case LayerEngine:
		return "ENGINE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event.
type Category uint8

const (
	CategoryTelemetry  Category = 0
	CategoryProperties Category = 1
	CategoryCommand    Category = 2
	CategoryState      Category = 3
	CategoryError      Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTelemetry:
		return "TELEMETRY"
	case CategoryProperties:
		return "PROPERTIES"
	case CategoryCommand:
		return "COMMAND"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MessageKind is the hub message a payload belongs to.
type MessageKind uint8

const (
	MessageKindTelemetry       MessageKind = 0
	MessageKindDeviceInfo      MessageKind = 1
	MessageKindPropertiesPatch MessageKind = 2
	MessageKindTwinDocument    MessageKind = 3
	MessageKindPropertiesAck   MessageKind = 4
	MessageKindCommandRequest  MessageKind = 5
	MessageKindCommandResponse MessageKind = 6
)

// String returns the message kind name.
func (m MessageKind) String() string {
	switch m {
	case MessageKindTelemetry:
		return "TELEMETRY"
	case MessageKindDeviceInfo:
		return "DEVICE_INFO"
	case MessageKindPropertiesPatch:
		return "PROPERTIES_PATCH"
	case MessageKindTwinDocument:
		return "TWIN_DOCUMENT"
	case MessageKindPropertiesAck:
		return "PROPERTIES_ACK"
	case MessageKindCommandRequest:
		return "COMMAND_REQUEST"
	case MessageKindCommandResponse:
		return "COMMAND_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures one payload.
type MessageEvent struct {
	Kind MessageKind `cbor:"1,keyasint"`

	// RequestID correlates command and properties requests with responses.
	RequestID *uint32 `cbor:"2,keyasint,omitempty"`

	// Name is the command name of command messages.
	Name string `cbor:"3,keyasint,omitempty"`

	// Status is the command response or ack code.
	Status *uint16 `cbor:"4,keyasint,omitempty"`

	// Version is the desired document version of properties messages.
	Version *int32 `cbor:"5,keyasint,omitempty"`

	// Payload holds a copy of the raw JSON, at most MaxPayloadCapture bytes.
	Payload []byte `cbor:"6,keyasint,omitempty"`

	// Truncated is set when Payload was cut.
	Truncated bool `cbor:"7,keyasint,omitempty"`

	// ProcessingTime from request receipt to response (responses only).
	ProcessingTime *time.Duration `cbor:"8,keyasint,omitempty"`
}

// CapturePayload copies p for a MessageEvent. The agent reuses its buffers,
// so events must never alias them.
func CapturePayload(p []byte) ([]byte, bool) {
	if len(p) == 0 {
		return nil, false
	}
	truncated := len(p) > MaxPayloadCapture
	if truncated {
		p = p[:MaxPayloadCapture]
	}
	return append([]byte(nil), p...), truncated
}

// StateChangeEvent captures a change of agent state.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	OldState string      `cbor:"2,keyasint,omitempty"`
	NewState string      `cbor:"3,keyasint"`
	Reason   string      `cbor:"4,keyasint,omitempty"`
}

// StateEntity is what changed state.
type StateEntity uint8

const (
	StateEntityActuator           StateEntity = 0
	StateEntityTelemetryFrequency StateEntity = 1
	StateEntityConnection         StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityActuator:
		return "ACTUATOR"
	case StateEntityTelemetryFrequency:
		return "TELEMETRY_FREQUENCY"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failure.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Offset is the byte offset of a codec error, if known.
	Offset *int `cbor:"3,keyasint,omitempty"`

	// Context names the operation that failed.
	Context string `cbor:"4,keyasint,omitempty"`
}
