package engine

import (
	"github.com/rgbled/rgbled-go/pkg/persistence"
	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// Transport carries engine output to the hub. Payload slices alias the
// engine's scratch buffer and are only valid until the call returns.
type Transport interface {
	// SendTelemetry sends a telemetry message.
	SendTelemetry(payload []byte) error

	// SendPropertiesUpdate sends a reported properties document.
	SendPropertiesUpdate(requestID uint32, payload []byte) error

	// SendCommandResponse answers a command request.
	SendCommandResponse(requestID uint32, status pnp.Status, payload []byte) error
}

// StateStore persists accepted twin state. *persistence.TwinStateStore
// implements it.
type StateStore interface {
	Save(state *persistence.TwinState) error
}
