package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rgbled/rgbled-go/pkg/actuator"
)

var (
	// ErrInvalidMessage indicates an export message that is not valid JSON.
	ErrInvalidMessage = errors.New("relay: invalid message")

	// ErrMissingTelemetry indicates a message without a telemetry section.
	ErrMissingTelemetry = errors.New("relay: message has no telemetry")
)

// Message is a telemetry export message.
type Message struct {
	ApplicationID string     `json:"applicationId"`
	DeviceID      string     `json:"deviceId"`
	EnqueuedTime  time.Time  `json:"enqueuedTime"`
	MessageSource string     `json:"messageSource"`
	Schema        string     `json:"schema"`
	TemplateID    string     `json:"templateId"`
	Telemetry     *Telemetry `json:"telemetry"`
}

// Telemetry is the device payload of an export message.
type Telemetry struct {
	LEDStatus actuator.LEDStatus `json:"led_status"`
}

// LampOn reports the lamp status the backend stores: on only while the main
// light is lit white.
func (t Telemetry) LampOn() bool {
	return t.LEDStatus == actuator.StatusOnOther
}

// DecodeMessage parses an export message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if m.Telemetry == nil {
		return Message{}, ErrMissingTelemetry
	}
	return m, nil
}
